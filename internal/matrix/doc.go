// Package matrix builds the ground-truth transition matrix that constrains CTC
// forced alignment to the reference text.
//
// Two strategies implement the Builder interface. CharBuilder works on
// character vocabularies: each matrix position is one character of the
// space-delimited utterance stream with slots for the one- and two-character
// symbols ending there. TokenBuilder works on subword vocabularies: each
// position is one token id, and every utterance is preceded by a
// blank/word-boundary bracket row.
//
// Both strategies record where each utterance begins so the refiner can map
// alignment timings back to utterances.
package matrix
