// Package vocab models the ordered output symbol inventory of an acoustic model.
//
// The blank symbol always occupies the last index; the space (character mode)
// or word-boundary marker (token mode) is looked up by value.
package vocab

import (
	"fmt"
	"strings"
)

// NoSymbol marks an unused transition-matrix slot or an absent lookup.
const NoSymbol = -1

// Vocabulary is an ordered, duplicate-free symbol list.
type Vocabulary struct {
	symbols []string
	index   map[string]int
	maxLen  int
}

// New builds a Vocabulary. Duplicate symbols are rejected; an empty list is
// allowed and yields a vocabulary without a blank.
func New(symbols []string) (*Vocabulary, error) {
	v := &Vocabulary{
		symbols: append([]string(nil), symbols...),
		index:   make(map[string]int, len(symbols)),
	}
	for i, s := range v.symbols {
		if prev, ok := v.index[s]; ok {
			return nil, fmt.Errorf("vocabulary: symbol %q repeated at indices %d and %d", s, prev, i)
		}
		v.index[s] = i
		if n := len([]rune(s)); n > v.maxLen {
			v.maxLen = n
		}
	}
	return v, nil
}

// MustNew is New for static vocabularies in tests and examples.
func MustNew(symbols []string) *Vocabulary {
	v, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return v
}

// Len reports the number of symbols.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.symbols)
}

// Symbols returns a copy of the ordered symbol list.
func (v *Vocabulary) Symbols() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.symbols...)
}

// Index returns the position of symbol or NoSymbol.
func (v *Vocabulary) Index(symbol string) int {
	if v == nil {
		return NoSymbol
	}
	if i, ok := v.index[symbol]; ok {
		return i
	}
	return NoSymbol
}

// Contains reports whether symbol is a vocabulary entry.
func (v *Vocabulary) Contains(symbol string) bool {
	return v.Index(symbol) != NoSymbol
}

// Symbol returns the entry at i, or "" when out of range.
func (v *Vocabulary) Symbol(i int) string {
	if v == nil || i < 0 || i >= len(v.symbols) {
		return ""
	}
	return v.symbols[i]
}

// BlankIndex is the last index, or NoSymbol for an empty vocabulary.
func (v *Vocabulary) BlankIndex() int {
	if v.Len() == 0 {
		return NoSymbol
	}
	return len(v.symbols) - 1
}

// Blank returns the blank symbol, or "" for an empty vocabulary.
func (v *Vocabulary) Blank() string {
	return v.Symbol(v.BlankIndex())
}

// MaxSymbolLen is the longest entry measured in runes.
func (v *Vocabulary) MaxSymbolLen() int {
	if v == nil {
		return 0
	}
	return v.maxLen
}

func (v *Vocabulary) String() string {
	if v == nil {
		return "[]"
	}
	quoted := make([]string, len(v.symbols))
	for i, s := range v.symbols {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, " ") + "]"
}
