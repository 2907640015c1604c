package widgets

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette, https://catppuccin.com/palette
const (
	ColorPink     lipgloss.Color = "#f5c2e7"
	ColorRed      lipgloss.Color = "#f38ba8"
	ColorPeach    lipgloss.Color = "#fab387"
	ColorYellow   lipgloss.Color = "#f9e2af"
	ColorGreen    lipgloss.Color = "#a6e3a1"
	ColorTeal     lipgloss.Color = "#94e2d5"
	ColorBlue     lipgloss.Color = "#89b4fa"
	ColorLavender lipgloss.Color = "#b4befe"

	ColorText     lipgloss.Color = "#cdd6f4"
	ColorSubtext1 lipgloss.Color = "#bac2de"
	ColorSubtext0 lipgloss.Color = "#a6adc8"
	ColorOverlay1 lipgloss.Color = "#7f849c"
	ColorOverlay0 lipgloss.Color = "#6c7086"
	ColorSurface1 lipgloss.Color = "#45475a"
	ColorSurface0 lipgloss.Color = "#313244"
	ColorMantle   lipgloss.Color = "#181825"
)

// Semantic aliases.
const (
	ColorAccent  = ColorPink
	ColorFocus   = ColorLavender
	ColorSuccess = ColorGreen
	ColorError   = ColorRed
	ColorWarning = ColorYellow
	ColorInfo    = ColorTeal
)

var (
	TitleStyle  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorSubtext0)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorText)
	ResultStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	ErrorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	DimStyle    = lipgloss.NewStyle().Foreground(ColorOverlay1)
	CursorStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
)
