// Package terminal implements a line-oriented channel for interactive use.
// Prompts carry the field path, the expected shape and, after a rejection,
// the reason in red.
package terminal
