package matrix

import (
	"fmt"

	"github.com/eliben/go-sentencepiece"

	"ctcseg/internal/config"
	"ctcseg/internal/vocab"
)

type pieceEncoder interface {
	Encode(text string) []sentencepiece.Token
}

// SentencePieceTokenizer encodes text with the acoustic model's own
// SentencePiece BPE model, so token ids match what the model emits.
type SentencePieceTokenizer struct {
	enc   pieceEncoder
	vocab *vocab.Vocabulary
}

// NewSentencePieceTokenizer loads the model at path. Token ids must index
// non-blank entries of v.
func NewSentencePieceTokenizer(path string, v *vocab.Vocabulary) (*SentencePieceTokenizer, error) {
	proc, err := sentencepiece.NewProcessorFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer model %s: %w", path, err)
	}
	return &SentencePieceTokenizer{enc: proc, vocab: v}, nil
}

func (t *SentencePieceTokenizer) Encode(text string) ([]int, error) {
	tokens := t.enc.Encode(text)
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if tok.ID < 0 || tok.ID >= t.vocab.BlankIndex() {
			return nil, fmt.Errorf("tokenizer: piece %q has id %d outside vocabulary of %d symbols", tok.Text, tok.ID, t.vocab.Len())
		}
		ids = append(ids, tok.ID)
	}
	return ids, nil
}

// NewTokenizer returns the SentencePiece tokenizer when a model is configured
// and the greedy longest-match tokenizer otherwise.
func NewTokenizer(cfg config.Alignment, v *vocab.Vocabulary) (Tokenizer, error) {
	if cfg.TokenizerModel == "" {
		return NewGreedyTokenizer(v, cfg.WordBoundary), nil
	}
	return NewSentencePieceTokenizer(cfg.TokenizerModel, v)
}
