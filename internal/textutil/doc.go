// Package textutil normalizes reference text before it reaches the matrix
// builder.
package textutil
