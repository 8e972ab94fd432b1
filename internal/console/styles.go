package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles groups the lipgloss styles used by the REPL.
type Styles struct {
	Heading lipgloss.Style
	Prompt  lipgloss.Style
	OK      lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

var (
	primary = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#8BC34A"}
	danger  = lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}
	muted   = lipgloss.AdaptiveColor{Light: "#6A737D", Dark: "#8B949E"}
)

// NewStyles builds styles for w. Color is dropped automatically when w is not a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Heading: r.NewStyle().Bold(true).Foreground(primary),
		Prompt:  r.NewStyle().Foreground(primary),
		OK:      r.NewStyle().Foreground(primary),
		Error:   r.NewStyle().Foreground(danger),
		Muted:   r.NewStyle().Foreground(muted),
	}
}
