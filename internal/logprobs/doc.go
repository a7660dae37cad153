// Package logprobs reads frame-level log-probability matrices produced by an
// acoustic model: NumPy .npy arrays (float32 or float64, two dimensions) and
// whitespace-separated text with one frame per line.
package logprobs
