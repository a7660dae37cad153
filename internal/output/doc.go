// Package output writes and reads segment files.
//
// A segment file starts with the audio path on its own line, followed by one
// line per segment:
//
//	start end score | processed text | raw text | normalized text
//
// Numbers use the shortest decimal form that round-trips, always with a
// fractional part or exponent (1.0, 0.04, -10000000000.0, 1e-05).
package output
