package matrix

import (
	"strings"

	"ctcseg/internal/vocab"
)

// Tokenizer maps text to vocabulary ids.
type Tokenizer interface {
	Encode(text string) ([]int, error)
}

// TokenizerFunc adapts a function to Tokenizer.
type TokenizerFunc func(string) ([]int, error)

func (f TokenizerFunc) Encode(text string) ([]int, error) { return f(text) }

// UnknownToken is emitted for characters no vocabulary entry covers, when the
// vocabulary defines it.
const UnknownToken = "<unk>"

// GreedyTokenizer splits text on whitespace and covers each word, prefixed
// with the word-boundary marker, by repeatedly taking the longest vocabulary
// entry that matches at the current position.
type GreedyTokenizer struct {
	vocab    *vocab.Vocabulary
	boundary string
	maxLen   int
}

// NewGreedyTokenizer returns a longest-match tokenizer over v.
func NewGreedyTokenizer(v *vocab.Vocabulary, boundary string) *GreedyTokenizer {
	return &GreedyTokenizer{vocab: v, boundary: boundary, maxLen: v.MaxSymbolLen()}
}

func (t *GreedyTokenizer) Encode(text string) ([]int, error) {
	var ids []int
	unk := t.vocab.Index(UnknownToken)
	for _, word := range strings.Fields(text) {
		runes := []rune(t.boundary + word)
		for pos := 0; pos < len(runes); {
			n := t.longestMatch(runes[pos:])
			if n == 0 {
				if unk != vocab.NoSymbol {
					ids = append(ids, unk)
				}
				pos++
				continue
			}
			ids = append(ids, t.vocab.Index(string(runes[pos:pos+n])))
			pos += n
		}
	}
	return ids, nil
}

func (t *GreedyTokenizer) longestMatch(runes []rune) int {
	limit := min(t.maxLen, len(runes))
	for n := limit; n > 0; n-- {
		if t.vocab.Contains(string(runes[:n])) {
			return n
		}
	}
	return 0
}

