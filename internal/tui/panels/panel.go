// Package panels holds the calculator variants shown as tabs. The set is
// closed: every Tab has exactly one Panel, built by New.
package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/history"
)

// Tab identifies a calculator variant.
type Tab int

const (
	TabSimple Tab = iota
	TabIntegral
)

// AllTabs returns the tabs in display order.
func AllTabs() []Tab { return []Tab{TabSimple, TabIntegral} }

func (t Tab) String() string {
	switch t {
	case TabSimple:
		return "Simple"
	case TabIntegral:
		return "Integral"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// Kind is the history record type written by the tab's panel.
func (t Tab) Kind() string {
	switch t {
	case TabIntegral:
		return history.KindIntegral
	default:
		return history.KindSimple
	}
}

// TabForKind maps a record type back to the panel that can restore it.
func TabForKind(kind string) (Tab, bool) {
	switch kind {
	case history.KindSimple:
		return TabSimple, true
	case history.KindIntegral:
		return TabIntegral, true
	default:
		return 0, false
	}
}

// ParseTab maps a config value to a tab; unknown values mean TabSimple.
func ParseTab(s string) Tab {
	if strings.EqualFold(strings.TrimSpace(s), "integral") {
		return TabIntegral
	}
	return TabSimple
}

// Panel is one calculator variant. Panels never touch the history store:
// they emit SubmitMsg and read history through Deps.
type Panel interface {
	history.Restorer
	Tab() Tab
	Title() string
	Init() tea.Cmd
	Update(tea.Msg) (Panel, tea.Cmd)
	View(width, height int) string
	Focus() tea.Cmd
	Blur()
}

// Deps carries settings and read-only history access into panels.
type Deps struct {
	Angle     calc.AngleUnit
	Precision int
	Method    calc.Method
	Intervals int
	// Ans returns the latest simple result, or 0.
	Ans func() float64
}

func (d Deps) options() calc.Options {
	o := calc.Options{Angle: d.Angle, Precision: d.Precision}
	if d.Ans != nil {
		o.Ans = d.Ans()
	}
	return o
}

// SubmitMsg asks the shell to append a calculation to history.
type SubmitMsg struct {
	Fields map[string]any
}

func submit(fields map[string]any) tea.Cmd {
	return func() tea.Msg { return SubmitMsg{Fields: fields} }
}

// New builds the panel for tab. An unknown tab is a programming error.
func New(tab Tab, deps Deps) Panel {
	switch tab {
	case TabSimple:
		return NewSimple(deps)
	case TabIntegral:
		return NewIntegral(deps)
	}
	panic(fmt.Sprintf("panels: unknown tab %d", int(tab)))
}

func wrongKind(p Panel, rec history.Record) error {
	return fmt.Errorf("%s panel cannot restore a %q record", strings.ToLower(p.Title()), rec.Kind())
}
