// Package memory provides in-memory adapters: a transcript store and a
// scripted channel that stands in for a human or LLM peer.
package memory
