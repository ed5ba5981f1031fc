package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var banner = []struct {
	line  string
	color string
}{
	{`       _ _      _ _   `, "#818cf8"},
	{`   ___| (_) ___(_) |_ `, "#a78bfa"},
	{`  / _ \ | |/ __| | __|`, "#c084fc"},
	{` |  __/ | | (__| | |_ `, "#e879f9"},
	{`  \___|_|_|\___|_|\__|`, "#f472b6"},
}

// PrintBanner writes the elicit banner and version to w using profile p.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for _, b := range banner {
		fmt.Fprintln(w, p.String(b.line).Foreground(p.Color(b.color)))
	}
	fmt.Fprintln(w, p.String("  "+version).Faint())
	fmt.Fprintln(w)
}
