// Package style holds the lipgloss styles instl renders with. Styles are
// bound to a renderer so that output to a pipe or file carries no escape
// sequences.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of styles for one output stream
type Styles struct {
	Heading lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// New builds the styles on r
func New(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Heading: r.NewStyle().Foreground(HeadingColor).Bold(true),
		Success: r.NewStyle().Foreground(SuccessColor).Bold(true),
		Error:   r.NewStyle().Foreground(ErrorColor).Bold(true),
		Warning: r.NewStyle().Foreground(WarningColor),
		Muted:   r.NewStyle().Foreground(MutedColor),
	}
}

// Outcome renders an invocation outcome name: green for success, red for
// failure, muted for anything else.
func (s *Styles) Outcome(outcome string) string {
	switch outcome {
	case "succeeded":
		return s.Success.Render(outcome)
	case "failed":
		return s.Error.Render(outcome)
	default:
		return s.Muted.Render(outcome)
	}
}

// ExitCode renders an exit status, highlighted when non-zero
func (s *Styles) ExitCode(code int, text string) string {
	if code == 0 {
		return s.Muted.Render(text)
	}
	return s.Warning.Render(text)
}
