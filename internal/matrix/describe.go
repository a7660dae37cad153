package matrix

import (
	"fmt"
	"strconv"
	"strings"

	"ctcseg/internal/vocab"
)

// Describe renders the admissible symbols of the first limit rows, one line
// per row. A non-positive limit renders every row.
func Describe(m *Matrix, v *vocab.Vocabulary, limit int) []string {
	if m == nil {
		return nil
	}
	n := len(m.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		syms := make([]string, 0, SlotsPerRow)
		for _, idx := range m.Rows[i] {
			if idx == vocab.NoSymbol {
				continue
			}
			syms = append(syms, strconv.Quote(v.Symbol(idx)))
		}
		lines = append(lines, fmt.Sprintf("%d: [%s]", i, strings.Join(syms, " ")))
	}
	return lines
}
