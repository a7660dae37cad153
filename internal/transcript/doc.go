// Package transcript loads the three parallel text variants of a reference
// transcript: the processed text used for alignment, the punctuated raw text
// and its normalized form. The two variants are sibling files derived from the
// processed file's name.
package transcript
