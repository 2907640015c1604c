package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/tui/panels"
	"github.com/jask/calcdeck/internal/tui/widgets"
)

const (
	appTitle    = "calcdeck"
	appSubtitle = "Advanced scientific calculator: simple operations and integrals"
	footerText  = "calcdeck © 2026"
)

var (
	headerBarStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorText).
			Background(widgets.ColorMantle).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorAccent).
			Background(widgets.ColorMantle).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorSubtext0).
			Background(widgets.ColorMantle)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorAccent).
			Background(widgets.ColorSurface0).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(widgets.ColorOverlay1).
				Background(widgets.ColorMantle).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorOverlay0).
			Background(widgets.ColorMantle)

	footerStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorSubtext0).
			Background(widgets.ColorMantle).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorSubtext1).
			Background(widgets.ColorSurface0).
			Padding(0, 2)

	statusErrStyle = statusBarStyle.Foreground(widgets.ColorError)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorAccent).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(widgets.ColorSubtext0)

	historyOtherStyle = lipgloss.NewStyle().Foreground(widgets.ColorOverlay0)
	historyAgeStyle   = lipgloss.NewStyle().Foreground(widgets.ColorOverlay1)
)

func (a *App) renderHeader() string {
	line := headerAppStyle.Render(appTitle) + subtitleStyle.Render("  "+appSubtitle)
	if a.width <= 0 {
		return headerBarStyle.Render(line)
	}
	return headerBarStyle.Width(a.width).Render(line)
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(panels.AllTabs()))
	for _, t := range panels.AllTabs() {
		label := a.panels[t].Title()
		if t == a.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	bar := tabSepStyle.Render(" ") + strings.Join(tabs, tabSepStyle.Render("│"))
	if a.width <= 0 {
		return headerBarStyle.Render(bar)
	}
	return headerBarStyle.Width(a.width).Render(bar)
}

func (a *App) renderFooter(bindings []key.Binding) string {
	bg := widgets.ColorMantle
	h := a.help
	h.Styles.ShortKey = helpKeyStyle.Background(bg)
	h.Styles.ShortDesc = helpDescStyle.Background(bg)
	h.Styles.ShortSeparator = helpDescStyle.Background(bg)
	h.ShortSeparator = "  "
	if a.width > 0 {
		h.Width = max(0, a.width-len(footerText)-6)
	}
	content := helpDescStyle.Background(bg).Render(footerText+"  ·  ") + h.ShortHelpView(bindings)
	if a.width <= 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(a.width).Render(content)
}

func (a *App) renderStatus() string {
	flat := strings.ReplaceAll(a.status, "\n", " ")
	style := statusBarStyle
	if a.statusErr {
		style = statusErrStyle
	}
	if a.width <= 0 {
		return style.Render(flat)
	}
	return style.Width(a.width).Render(flat)
}

func (a *App) placeWithFooter(body, statusLine, footer string) string {
	if a.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := max(1, a.height-2)
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(a.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	lines := strings.Split(main, "\n")
	for i, line := range lines {
		lines[i] = padRight(line, a.width)
	}
	return strings.Join(lines, "\n") + "\n" + statusLine + "\n" + footer
}

// historyView renders the sidebar. Entries of the active tab's kind are
// marked; the others are dimmed.
func (a *App) historyView(width, height int) string {
	var lines []string
	switch {
	case a.searching:
		lines = append(lines, a.search.View())
	case a.query != "":
		lines = append(lines, widgets.LabelStyle.Render(fmt.Sprintf("matches for %q", a.query)))
	default:
		lines = append(lines, widgets.LabelStyle.Render(fmt.Sprintf("%d of %d", len(a.records), a.store.Capacity())))
	}
	if a.confirmClear {
		lines = append(lines, widgets.ErrorStyle.Render("Clear all history? y/n"))
	}
	lines = append(lines, "")

	if len(a.records) == 0 {
		lines = append(lines, widgets.DimStyle.Render("No calculations yet."))
		return widgets.Text(strings.Join(lines, "\n")).Render(width, height)
	}

	now := a.now()
	kind := a.active.Kind()
	perEntry := 3
	visible := max(1, (height-len(lines))/perEntry)
	top := 0
	if a.cursor >= visible {
		top = a.cursor - visible + 1
	}
	for i := top; i < len(a.records) && i < top+visible; i++ {
		rec := a.records[i]
		marker := "  "
		if a.focus == focusHistory && i == a.cursor {
			marker = widgets.CursorStyle.Render("▸ ")
		}
		expr := recordTitle(rec)
		result := "= " + rec.String("display")
		if rec.String("display") == "" {
			result = "= " + rec.Result()
		}
		age := humanize.RelTime(rec.Time(), now, "ago", "from now")
		if rec.Kind() == kind {
			lines = append(lines,
				marker+widgets.ValueStyle.Render(badge(rec)+" "+expr),
				"    "+widgets.ResultStyle.Render(result),
			)
		} else {
			lines = append(lines,
				marker+historyOtherStyle.Render(badge(rec)+" "+expr),
				"    "+historyOtherStyle.Render(result),
			)
		}
		lines = append(lines, "    "+historyAgeStyle.Render(age))
	}
	return widgets.Text(strings.Join(lines, "\n")).Render(width, height)
}

func badge(rec history.Record) string {
	if rec.Kind() == history.KindIntegral {
		return "∫"
	}
	return "="
}

func recordTitle(rec history.Record) string {
	if rec.Kind() != history.KindIntegral {
		return rec.Expression()
	}
	lo, okL := rec.Float("lower")
	hi, okU := rec.Float("upper")
	if okL && okU {
		return fmt.Sprintf("[%g, %g] %s d%s", lo, hi, rec.Expression(), rec.String("variable"))
	}
	return fmt.Sprintf("%s d%s", rec.Expression(), rec.String("variable"))
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if width <= 0 || w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
