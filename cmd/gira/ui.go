package main

import (
	"os"
	"strings"

	glamour "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Adaptive styles for issue output.
var (
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"})
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
)

// useColor reports whether styled output makes sense for stdout.
func useColor() bool {
	if os.Getenv("NO_COLOR") != "" || jsonOutput {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// styled applies a style only when color output is active.
func styled(s lipgloss.Style, text string) string {
	if !useColor() {
		return text
	}
	return s.Render(text)
}

// renderMarkdown renders description/comment text for the terminal,
// wrapping at the terminal width capped at 100 columns. Falls back to the
// raw text when rendering is unavailable.
func renderMarkdown(text string) string {
	if !useColor() || strings.TrimSpace(text) == "" {
		return text
	}

	const maxReadableWidth = 100
	wrapWidth := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		wrapWidth = w
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}
