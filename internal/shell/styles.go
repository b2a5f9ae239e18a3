package shell

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent   = "154"
	colorGray     = "245"
	colorDarkGray = "238"
	colorRed      = "196"
	colorYellow   = "220"
)

// Styles holds the lipgloss styles used to render results.
type Styles struct {
	Prompt  lipgloss.Style
	Header  lipgloss.Style
	Card    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(colorDarkGray)).Padding(0, 1),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}

// PlainStyles renders without colour or borders, for pipes and NO_COLOR.
func PlainStyles() Styles {
	return Styles{
		Prompt:  lipgloss.NewStyle(),
		Header:  lipgloss.NewStyle(),
		Card:    lipgloss.NewStyle().PaddingRight(2),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}
