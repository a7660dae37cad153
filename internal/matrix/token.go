package matrix

import (
	"fmt"

	"ctcseg/internal/config"
	"ctcseg/internal/vocab"
)

// TokenBuilder builds matrices for subword vocabularies.
type TokenBuilder struct {
	vocab     *vocab.Vocabulary
	tokenizer Tokenizer
	boundary  string
}

// NewTokenBuilder returns a token-mode builder. boundary is the word-boundary
// marker symbol (conventionally "▁").
func NewTokenBuilder(v *vocab.Vocabulary, tok Tokenizer, boundary string) *TokenBuilder {
	return &TokenBuilder{vocab: v, tokenizer: tok, boundary: boundary}
}

func (b *TokenBuilder) Mode() string { return config.ModeToken }

// Build lays out an empty start row, then for each utterance a
// [blank, boundary] bracket row followed by one row per token id, and finally
// a trailing bracket row. Begin indices point at each utterance's first token
// row; the final begin index is the trailing bracket. An utterance that
// tokenizes to nothing gets a single blank placeholder row.
func (b *TokenBuilder) Build(utterances []string) (*Matrix, error) {
	if b.tokenizer == nil {
		return nil, fmt.Errorf("matrix: token mode requires a tokenizer")
	}
	bracket := Row{b.vocab.BlankIndex(), b.vocab.Index(b.boundary)}

	rows := []Row{EmptyRow}
	begins := make([]int, 0, len(utterances)+1)
	for i, utt := range utterances {
		rows = append(rows, bracket)
		begins = append(begins, len(rows))
		ids, err := b.tokenizer.Encode(utt)
		if err != nil {
			return nil, fmt.Errorf("matrix: tokenize utterance %d: %w", i, err)
		}
		if len(ids) == 0 {
			rows = append(rows, Row{bracket[0], vocab.NoSymbol})
			continue
		}
		for _, id := range ids {
			rows = append(rows, Row{id, vocab.NoSymbol})
		}
	}
	begins = append(begins, len(rows))
	rows = append(rows, bracket)

	return &Matrix{Rows: rows, Begins: begins}, nil
}
