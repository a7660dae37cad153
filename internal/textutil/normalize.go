package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeUtterance trims an utterance and collapses internal whitespace
// runs to a single space. When compose is set the text is also converted to
// Unicode NFC so precomposed vocabulary entries match decomposed input.
func NormalizeUtterance(text string, compose bool) string {
	if compose && !norm.NFC.IsNormalString(text) {
		text = norm.NFC.String(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeUtterances applies NormalizeUtterance to every entry, returning a new slice.
func NormalizeUtterances(texts []string, compose bool) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = NormalizeUtterance(text, compose)
	}
	return out
}
