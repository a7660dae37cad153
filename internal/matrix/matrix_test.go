package matrix

import (
	"reflect"
	"strings"
	"testing"

	"ctcseg/internal/config"
	"ctcseg/internal/vocab"
)

func charVocab(t *testing.T, symbols ...string) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.New(symbols)
	if err != nil {
		t.Fatalf("vocab.New: %v", err)
	}
	return v
}

func TestCharBuilderGroundTruthAndBegins(t *testing.T) {
	v := charVocab(t, "a", "b", " ", "ε")
	m, err := NewCharBuilder(v, " ", "", "").Build([]string{"ab", "ba"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.GroundTruth != "# ab ba " {
		t.Fatalf("ground truth = %q, want %q", m.GroundTruth, "# ab ba ")
	}
	if want := []int{1, 4, 7}; !reflect.DeepEqual(m.Begins, want) {
		t.Fatalf("begins = %v, want %v", m.Begins, want)
	}
	// Relative to the stream without the start marker the first utterance
	// starts at 0 and the second at 3.
	if m.Begins[0]-1 != 0 || m.Begins[1]-1 != 3 {
		t.Fatalf("relative begins = %d,%d", m.Begins[0]-1, m.Begins[1]-1)
	}
	if len(m.Rows) != len([]rune(m.GroundTruth)) {
		t.Fatalf("rows = %d, want %d", len(m.Rows), len([]rune(m.GroundTruth)))
	}
	want := []Row{
		{vocab.NoSymbol, vocab.NoSymbol},
		{2, vocab.NoSymbol},
		{0, vocab.NoSymbol},
		{1, vocab.NoSymbol},
		{2, vocab.NoSymbol},
		{1, vocab.NoSymbol},
		{0, vocab.NoSymbol},
		{2, vocab.NoSymbol},
	}
	if !reflect.DeepEqual(m.Rows, want) {
		t.Fatalf("rows = %v, want %v", m.Rows, want)
	}
	if err := m.Check(2); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCharBuilderTwoCharacterSymbols(t *testing.T) {
	v := charVocab(t, "a", "b", "ab", " ", "ε")
	m, err := NewCharBuilder(v, " ", "", "").Build([]string{"ab"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// "# ab " position 3 is 'b' with "ab" in the second slot.
	if got := m.Rows[3]; got != (Row{1, 2}) {
		t.Fatalf("row 3 = %v, want [1 2]", got)
	}
}

func TestCharBuilderFiltersCharacters(t *testing.T) {
	v := charVocab(t, "a", "b", ",", "▁c", " ", "ε")
	m, err := NewCharBuilder(v, " ", ",", "▁").Build([]string{"a,b c x"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.GroundTruth != "# ab c " {
		t.Fatalf("ground truth = %q", m.GroundTruth)
	}
}

func TestCharBuilderCollapsesRepeatedSpaces(t *testing.T) {
	v := charVocab(t, "a", "b", " ", "ε")
	m, err := NewCharBuilder(v, " ", "", "").Build([]string{"  a   b ", "b"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.GroundTruth != "# a b b " {
		t.Fatalf("ground truth = %q", m.GroundTruth)
	}
	if want := []int{1, 5, 7}; !reflect.DeepEqual(m.Begins, want) {
		t.Fatalf("begins = %v, want %v", m.Begins, want)
	}
}

func TestCharBuilderWordGapsUseConfiguredSeparator(t *testing.T) {
	tests := []struct {
		name       string
		symbols    []string
		space      string
		utterances []string
		want       string
		begins     []int
	}{
		{
			name:       "pipe separator",
			symbols:    []string{"a", "b", "|", "ε"},
			space:      "|",
			utterances: []string{"ab ba", "a"},
			want:       "#|ab|ba|a|",
			begins:     []int{1, 7, 9},
		},
		{
			name:       "tab between words",
			symbols:    []string{"a", "b", " ", "ε"},
			space:      " ",
			utterances: []string{"a\tb", "b"},
			want:       "# a b b ",
			begins:     []int{1, 5, 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewCharBuilder(charVocab(t, tt.symbols...), tt.space, "", "").Build(tt.utterances)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if m.GroundTruth != tt.want {
				t.Fatalf("ground truth = %q, want %q", m.GroundTruth, tt.want)
			}
			if !reflect.DeepEqual(m.Begins, tt.begins) {
				t.Fatalf("begins = %v, want %v", m.Begins, tt.begins)
			}
		})
	}
}

func TestCharBuilderBeginsStrictlyIncreasing(t *testing.T) {
	v := charVocab(t, "a", "b", " ", "ε")
	cases := [][]string{
		{},
		{""},
		{"", ""},
		{"ab", "", "ba"},
		{"zz", "a"},
		{"a", " ", "b", "   "},
		{"ab ba", "a b", "b", "", "xyz", "a"},
	}
	for _, utts := range cases {
		m, err := NewCharBuilder(v, " ", "", "").Build(utts)
		if err != nil {
			t.Fatalf("Build(%q): %v", utts, err)
		}
		if err := m.Check(len(utts)); err != nil {
			t.Fatalf("Build(%q): %v (begins %v, gt %q)", utts, err, m.Begins, m.GroundTruth)
		}
	}
}

func TestCharBuilderEmptyVocabulary(t *testing.T) {
	m, err := NewCharBuilder(charVocab(t), " ", "", "").Build([]string{"ab", "ba"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Check(2); err != nil {
		t.Fatalf("Check: %v", err)
	}
	for i, row := range m.Rows {
		if row != EmptyRow {
			t.Fatalf("row %d = %v, want empty", i, row)
		}
	}
}

func tokenVocab(t *testing.T) *vocab.Vocabulary {
	return charVocab(t, "▁he", "llo", "▁wor", "ld", "▁", "ε")
}

func TestTokenBuilderLayout(t *testing.T) {
	v := tokenVocab(t)
	b, err := NewBuilder(config.ModeToken, v, Options{WordBoundary: "▁"})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	m, err := b.Build([]string{"hello world", "hello"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	bracket := Row{5, 4}
	want := []Row{
		EmptyRow,
		bracket,
		{0, vocab.NoSymbol}, {1, vocab.NoSymbol}, {2, vocab.NoSymbol}, {3, vocab.NoSymbol},
		bracket,
		{0, vocab.NoSymbol}, {1, vocab.NoSymbol},
		bracket,
	}
	if !reflect.DeepEqual(m.Rows, want) {
		t.Fatalf("rows = %v, want %v", m.Rows, want)
	}
	if want := []int{2, 7, 9}; !reflect.DeepEqual(m.Begins, want) {
		t.Fatalf("begins = %v, want %v", m.Begins, want)
	}
}

func TestTokenBuilderNoTokens(t *testing.T) {
	v := tokenVocab(t)
	none := TokenizerFunc(func(string) ([]int, error) { return nil, nil })
	m, err := NewTokenBuilder(v, none, "▁").Build([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Check(2); err != nil {
		t.Fatalf("Check: %v (begins %v)", err, m.Begins)
	}
	if got := m.Rows[m.Begins[0]]; got != (Row{5, vocab.NoSymbol}) {
		t.Fatalf("placeholder row = %v", got)
	}
}

func TestTokenBuilderEmptyVocabulary(t *testing.T) {
	b, err := NewBuilder(config.ModeToken, charVocab(t), Options{WordBoundary: "▁"})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	m, err := b.Build([]string{"hello"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Check(1); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestGreedyTokenizerUnknown(t *testing.T) {
	v := charVocab(t, "▁a", "b", "<unk>", "ε")
	ids, err := NewGreedyTokenizer(v, "▁").Encode("ab aq")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := []int{0, 1, 0, 2}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}

func TestNewBuilderUnknownMode(t *testing.T) {
	if _, err := NewBuilder("phoneme", charVocab(t), Options{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDescribe(t *testing.T) {
	v := charVocab(t, "a", "b", "ab", " ", "ε")
	m, _ := NewCharBuilder(v, " ", "", "").Build([]string{"ab"})
	lines := Describe(m, v, 4)
	if len(lines) != 4 {
		t.Fatalf("lines = %d", len(lines))
	}
	if lines[0] != "0: []" {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[3], `"b" "ab"`) {
		t.Fatalf("line 3 = %q", lines[3])
	}
}
