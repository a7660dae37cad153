package matrix

import (
	"fmt"

	"ctcseg/internal/config"
	"ctcseg/internal/vocab"
)

// Options carries the per-mode settings for NewBuilder.
type Options struct {
	Space              string
	WordBoundary       string
	ExcludedCharacters string
	// Tokenizer is used in token mode; nil selects a GreedyTokenizer over the vocabulary.
	Tokenizer Tokenizer
}

// NewBuilder selects the strategy for mode.
func NewBuilder(mode string, v *vocab.Vocabulary, opts Options) (Builder, error) {
	switch mode {
	case config.ModeChar:
		return NewCharBuilder(v, opts.Space, opts.ExcludedCharacters, opts.WordBoundary), nil
	case config.ModeToken:
		tok := opts.Tokenizer
		if tok == nil {
			tok = NewGreedyTokenizer(v, opts.WordBoundary)
		}
		return NewTokenBuilder(v, tok, opts.WordBoundary), nil
	default:
		return nil, fmt.Errorf("matrix: unsupported mode %q", mode)
	}
}

// FromConfig builds the strategy described by the alignment section. In token
// mode a nil tok is resolved by NewTokenizer, loading the configured
// SentencePiece model when there is one.
func FromConfig(cfg config.Alignment, v *vocab.Vocabulary, tok Tokenizer) (Builder, error) {
	if tok == nil && cfg.Mode == config.ModeToken {
		var err error
		if tok, err = NewTokenizer(cfg, v); err != nil {
			return nil, err
		}
	}
	return NewBuilder(cfg.Mode, v, Options{
		Space:              cfg.Space,
		WordBoundary:       cfg.WordBoundary,
		ExcludedCharacters: cfg.ExcludedCharacters,
		Tokenizer:          tok,
	})
}
