package segment

import (
	"errors"
	"fmt"
)

// Alignment is the output of an alignment backend. Timings are indexed by
// transition-matrix position; Probs and Symbols are indexed by frame.
type Alignment struct {
	Timings []float64 `json:"timings"`
	Probs   []float64 `json:"char_probs"`
	Symbols []string  `json:"char_list"`
}

// Frames reports the length of the frame axis.
func (a *Alignment) Frames() int {
	if a == nil {
		return 0
	}
	return len(a.Probs)
}

// Validate checks the alignment against a matrix with the given number of positions.
func (a *Alignment) Validate(positions int) error {
	if a == nil {
		return errors.New("alignment: nil result")
	}
	if len(a.Timings) != positions {
		return fmt.Errorf("alignment: %d timings for %d matrix positions", len(a.Timings), positions)
	}
	if len(a.Probs) != len(a.Symbols) {
		return fmt.Errorf("alignment: %d probabilities but %d symbols", len(a.Probs), len(a.Symbols))
	}
	for i := 1; i < len(a.Timings); i++ {
		if a.Timings[i] < a.Timings[i-1] {
			return fmt.Errorf("alignment: timings decrease at position %d (%g < %g)", i, a.Timings[i], a.Timings[i-1])
		}
	}
	return nil
}
