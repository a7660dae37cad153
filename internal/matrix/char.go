package matrix

import (
	"strings"
	"unicode"

	"ctcseg/internal/config"
	"ctcseg/internal/vocab"
)

// StartOfGroundTruth prefixes the character stream so the first utterance's
// separator is never at position 0.
const StartOfGroundTruth = "#"

// CharBuilder builds matrices for character vocabularies.
type CharBuilder struct {
	vocab    *vocab.Vocabulary
	space    []rune
	excluded map[rune]struct{}
	meta     string
}

// NewCharBuilder returns a character-mode builder. A character is kept when it
// is a vocabulary entry outside the excluded set, or when meta+char is a
// vocabulary entry (tokenized meta-symbol vocabularies).
func NewCharBuilder(v *vocab.Vocabulary, space, excluded, meta string) *CharBuilder {
	if space == "" {
		space = " "
	}
	ex := make(map[rune]struct{}, len(excluded))
	for _, r := range excluded {
		ex[r] = struct{}{}
	}
	return &CharBuilder{vocab: v, space: []rune(space), excluded: ex, meta: meta}
}

func (b *CharBuilder) Mode() string { return config.ModeChar }

// Build concatenates the utterances into "#" + " utt1 utt2 ... " and records,
// for each utterance, the position of the separator preceding its first kept
// character. The final begin index is the trailing separator. An utterance
// that keeps no characters gets its own placeholder separator so begin
// indices stay strictly increasing.
func (b *CharBuilder) Build(utterances []string) (*Matrix, error) {
	gt := []rune(StartOfGroundTruth)
	begins := make([]int, 0, len(utterances)+1)

	separate := func() {
		if !b.endsWithSpace(gt) || (len(begins) > 0 && begins[len(begins)-1] == len(gt)-1) {
			gt = append(gt, b.space...)
		}
		begins = append(begins, len(gt)-1)
	}

	for _, utt := range utterances {
		separate()
		for _, r := range utt {
			if b.isWordGap(r) {
				if !b.endsWithSpace(gt) {
					gt = append(gt, b.space...)
				}
				continue
			}
			if b.keep(r) {
				gt = append(gt, r)
			}
		}
	}
	separate()

	rows := make([]Row, len(gt))
	for i := range gt {
		rows[i] = EmptyRow
		for s := 0; s < SlotsPerRow; s++ {
			if i-s < 0 {
				continue
			}
			rows[i][s] = b.vocab.Index(string(gt[i-s : i+1]))
		}
	}

	return &Matrix{Rows: rows, Begins: begins, GroundTruth: string(gt)}, nil
}

func (b *CharBuilder) keep(r rune) bool {
	ch := string(r)
	if _, excluded := b.excluded[r]; !excluded && b.vocab.Contains(ch) {
		return true
	}
	return b.meta != "" && b.vocab.Contains(b.meta+ch)
}

// isWordGap reports whether r separates words. Any Unicode space does, as
// does the configured separator when it is a single rune.
func (b *CharBuilder) isWordGap(r rune) bool {
	return unicode.IsSpace(r) || (len(b.space) == 1 && r == b.space[0])
}

func (b *CharBuilder) endsWithSpace(gt []rune) bool {
	if len(gt) < len(b.space) {
		return false
	}
	return strings.HasSuffix(string(gt[len(gt)-len(b.space):]), string(b.space))
}
