package tui

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer_Plain(t *testing.T) {
	render, err := NewRenderer(true)
	require.NoError(t, err)

	out, err := render("# elicit_port\n")
	require.NoError(t, err)
	assert.Equal(t, "# elicit_port\n", out)
}

func TestNewRenderer_Glamour(t *testing.T) {
	render, err := NewRenderer(false)
	require.NoError(t, err)

	out, err := render("# elicit_port\n\nA non-zero port.\n")
	require.NoError(t, err)
	assert.Contains(t, out, "elicit_port")
	assert.Contains(t, out, "A non-zero port.")
}

func TestPrintBanner_Ascii(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii, "v1.2.3")

	assert.Contains(t, buf.String(), "v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[")
}
