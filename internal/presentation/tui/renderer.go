package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Renderer turns Markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer renders with glamour, detecting a light or dark background.
// A plain renderer returns the Markdown unchanged, for pipes and files.
func NewRenderer(plain bool) (Renderer, error) {
	if plain {
		return func(markdown string) (string, error) { return markdown, nil }, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}
