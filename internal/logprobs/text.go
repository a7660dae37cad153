package logprobs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadText decodes one frame per line of whitespace-separated values. Blank
// lines and lines starting with '#' are skipped.
func ReadText(r io.Reader) (Matrix, error) {
	var m Matrix
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		if len(m) > 0 && len(row) != len(m[0]) {
			return nil, fmt.Errorf("line %d has %d columns, expected %d", line, len(row), len(m[0]))
		}
		m = append(m, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteText encodes m one frame per line, tab separated.
func WriteText(w io.Writer, m Matrix) error {
	bw := bufio.NewWriter(w)
	for _, row := range m {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
