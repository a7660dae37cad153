package matrix

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/eliben/go-sentencepiece"
	"google.golang.org/protobuf/encoding/protowire"

	"ctcseg/internal/config"
)

type fakePieces []sentencepiece.Token

func (f fakePieces) Encode(string) []sentencepiece.Token { return f }

// writeBPEModel writes a minimal SentencePiece BPE model with the given pieces.
// The first piece is the unknown token.
func writeBPEModel(t *testing.T, pieces ...string) string {
	t.Helper()
	const (
		pieceNormal  = 1
		pieceUnknown = 2
		modelBPE     = 2
	)
	var b []byte
	for i, p := range pieces {
		var sp []byte
		sp = protowire.AppendTag(sp, 1, protowire.BytesType)
		sp = protowire.AppendString(sp, p)
		sp = protowire.AppendTag(sp, 2, protowire.Fixed32Type)
		sp = protowire.AppendFixed32(sp, math.Float32bits(float32(-i)))
		kind := uint64(pieceNormal)
		if i == 0 {
			kind = pieceUnknown
		}
		sp = protowire.AppendTag(sp, 3, protowire.VarintType)
		sp = protowire.AppendVarint(sp, kind)
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sp)
	}

	var trainer []byte
	trainer = protowire.AppendTag(trainer, 3, protowire.VarintType)
	trainer = protowire.AppendVarint(trainer, modelBPE)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, trainer)

	var normalizer []byte
	normalizer = protowire.AppendTag(normalizer, 1, protowire.BytesType)
	normalizer = protowire.AppendString(normalizer, "identity")
	for _, field := range []protowire.Number{3, 4} { // add_dummy_prefix, remove_extra_whitespaces
		normalizer = protowire.AppendTag(normalizer, field, protowire.VarintType)
		normalizer = protowire.AppendVarint(normalizer, 0)
	}
	normalizer = protowire.AppendTag(normalizer, 5, protowire.VarintType) // escape_whitespaces
	normalizer = protowire.AppendVarint(normalizer, 1)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, normalizer)

	path := filepath.Join(t.TempDir(), "tokenizer.model")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

func TestSentencePieceTokenizerLoadsModel(t *testing.T) {
	v := charVocab(t, "<unk>", "a", "▁", "ε")
	path := writeBPEModel(t, "<unk>", "a", "▁")

	tok, err := NewTokenizer(config.Alignment{TokenizerModel: path, WordBoundary: "▁"}, v)
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	if _, ok := tok.(*SentencePieceTokenizer); !ok {
		t.Fatalf("expected SentencePiece tokenizer, got %T", tok)
	}
	ids, err := tok.Encode("a a")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := []int{1, 2, 1}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}

func TestSentencePieceTokenizerRejectsOutOfRangeIDs(t *testing.T) {
	v := charVocab(t, "<unk>", "▁a", "ε")
	tests := []struct {
		name   string
		pieces fakePieces
		want   []int
		fail   bool
	}{
		{name: "in range", pieces: fakePieces{{ID: 1, Text: "▁a"}, {ID: 0, Text: "<unk>"}}, want: []int{1, 0}},
		{name: "blank id", pieces: fakePieces{{ID: 2, Text: "x"}}, fail: true},
		{name: "beyond vocabulary", pieces: fakePieces{{ID: 40, Text: "▁zz"}}, fail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &SentencePieceTokenizer{enc: tt.pieces, vocab: v}
			ids, err := tok.Encode("ignored")
			if tt.fail {
				if err == nil {
					t.Fatalf("expected error, got ids %v", ids)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Fatalf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestNewTokenizerFallsBackToGreedy(t *testing.T) {
	tok, err := NewTokenizer(config.Alignment{WordBoundary: "▁"}, tokenVocab(t))
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	if _, ok := tok.(*GreedyTokenizer); !ok {
		t.Fatalf("expected greedy tokenizer, got %T", tok)
	}
}

func TestFromConfigTokenizerModel(t *testing.T) {
	cfg := config.Alignment{
		Mode:           config.ModeToken,
		WordBoundary:   "▁",
		TokenizerModel: filepath.Join(t.TempDir(), "missing.model"),
	}
	if _, err := FromConfig(cfg, tokenVocab(t), nil); err == nil {
		t.Fatal("expected error for missing tokenizer model")
	}

	v := charVocab(t, "<unk>", "a", "▁", "ε")
	cfg.TokenizerModel = writeBPEModel(t, "<unk>", "a", "▁")
	b, err := FromConfig(cfg, v, nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	m, err := b.Build([]string{"a a"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if want := []int{2, 5}; !reflect.DeepEqual(m.Begins, want) {
		t.Fatalf("begins = %v, want %v", m.Begins, want)
	}
}
