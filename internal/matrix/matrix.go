package matrix

import (
	"errors"
	"fmt"

	"ctcseg/internal/vocab"
)

// SlotsPerRow is the number of candidate symbol slots per matrix position.
const SlotsPerRow = 2

// Row holds candidate vocabulary indices for one matrix position. Unused
// slots hold vocab.NoSymbol.
type Row [SlotsPerRow]int

// EmptyRow has no admissible symbol.
var EmptyRow = Row{vocab.NoSymbol, vocab.NoSymbol}

// Matrix is a ground-truth transition matrix plus utterance begin positions.
type Matrix struct {
	Rows []Row
	// Begins has one entry per utterance plus a final entry marking the end
	// of the last utterance.
	Begins []int
	// GroundTruth is the character stream the rows were derived from
	// (character mode only).
	GroundTruth string
}

// Utterances reports how many utterances the matrix encodes.
func (m *Matrix) Utterances() int {
	if m == nil || len(m.Begins) == 0 {
		return 0
	}
	return len(m.Begins) - 1
}

// Span returns the [start, end) matrix positions of utterance i.
func (m *Matrix) Span(i int) (int, int) {
	return m.Begins[i], m.Begins[i+1]
}

// Slots returns the flat row-major slot values as consumed by alignment backends.
func (m *Matrix) Slots() [][]int {
	out := make([][]int, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = []int{row[0], row[1]}
	}
	return out
}

// Check verifies the structural invariants every builder must uphold.
func (m *Matrix) Check(utterances int) error {
	if m == nil {
		return errors.New("matrix: nil")
	}
	if len(m.Begins) != utterances+1 {
		return fmt.Errorf("matrix: %d begin indices for %d utterances", len(m.Begins), utterances)
	}
	for i, b := range m.Begins {
		if b < 0 || b >= len(m.Rows) {
			return fmt.Errorf("matrix: begin index %d (%d) outside %d rows", i, b, len(m.Rows))
		}
		if i > 0 && b <= m.Begins[i-1] {
			return fmt.Errorf("matrix: begin indices not strictly increasing at %d (%d <= %d)", i, b, m.Begins[i-1])
		}
	}
	return nil
}

// Builder turns reference utterances into a transition matrix.
type Builder interface {
	Build(utterances []string) (*Matrix, error)
	Mode() string
}
