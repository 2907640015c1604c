package widgets

import "github.com/charmbracelet/lipgloss"

// Box draws a rounded border with a bracketed title above the content.
type Box struct {
	Title   string
	Content string
	Focused bool
}

func (b Box) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	border := ColorOverlay0
	if b.Focused {
		border = ColorFocus
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(1, width-2)).
		Height(max(1, height-2)).
		MaxHeight(height)
	title := TitleStyle.Bold(b.Focused).Render("[" + b.Title + "]")
	return style.Render(title + "\n" + b.Content)
}
