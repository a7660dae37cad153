// Package segment converts frame-level forced-alignment output into
// utterance-level (start, end, score) segments.
//
// Refine applies the midpoint boundary rule, snaps start frames that fall in a
// blank run to the run's centre, and scores each span with the minimum mean
// log-probability over fixed-length windows. It performs no I/O.
package segment
