// Package tui is the interactive shell: it owns the active tab, routes
// submissions into the history store and renders the layout chrome.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/config"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/observability"
	"github.com/jask/calcdeck/internal/tui/panels"
	"github.com/jask/calcdeck/internal/tui/widgets"
)

type focusArea int

const (
	focusPanel focusArea = iota
	focusHistory
)

// App ties the calculator panels to the history sidebar.
type App struct {
	ctx    context.Context
	store  *history.Store
	cfg    config.Config
	keys   *KeyRegistry
	help   help.Model
	log    *slog.Logger
	now    func() time.Time
	panels map[panels.Tab]panels.Panel
	active panels.Tab
	focus  focusArea

	records      []history.Record
	cursor       int
	search       textinput.Model
	searching    bool
	query        string
	confirmClear bool

	status    string
	statusErr bool
	width     int
	height    int
}

type statusMsg string

type errMsg struct{ error }

// historyChangedMsg follows every store mutation.
type historyChangedMsg struct {
	status string
	err    error
}

func New(ctx context.Context, cfg config.Config, store *history.Store) *App {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search history"
	search.CharLimit = 128

	a := &App{
		ctx:    ctx,
		store:  store,
		cfg:    cfg,
		keys:   NewKeyRegistry(),
		help:   help.New(),
		log:    observability.WithFields("component", "tui"),
		now:    time.Now,
		active: panels.ParseTab(cfg.UI.DefaultTab),
		search: search,
	}
	deps := panels.Deps{
		Angle:     calc.ParseAngle(cfg.Calc.AngleUnit),
		Precision: cfg.Calc.Precision,
		Method:    calc.ParseMethod(cfg.Calc.IntegralMethod),
		Intervals: cfg.Calc.IntegralIntervals,
		Ans:       a.ans,
	}
	a.panels = make(map[panels.Tab]panels.Panel, len(panels.AllTabs()))
	for _, t := range panels.AllTabs() {
		a.panels[t] = panels.New(t, deps)
	}
	a.refresh()
	if err := store.LoadErr(); err != nil {
		a.setError(fmt.Errorf("stored history was unreadable, starting empty: %w", err))
	}
	return a
}

// ans is the latest simple result, or 0 when there is none.
func (a *App) ans() float64 {
	rec, ok := a.store.Latest(history.KindSimple)
	if !ok {
		return 0
	}
	v, _ := rec.Float("result")
	return v
}

// Active reports the selected tab.
func (a *App) Active() panels.Tab { return a.active }

// Panel returns the panel for t.
func (a *App) Panel(t panels.Tab) panels.Panel { return a.panels[t] }

// Status is the current status line text.
func (a *App) Status() string { return a.status }

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.panels)+1)
	for _, t := range panels.AllTabs() {
		cmds = append(cmds, a.panels[t].Init())
	}
	cmds = append(cmds, a.panels[a.active].Focus())
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	case panels.SubmitMsg:
		return a, a.appendCmd(m.Fields)
	case historyChangedMsg:
		a.refresh()
		if m.err != nil {
			a.setError(m.err)
		} else {
			a.setStatus(m.status)
		}
		return a, nil
	case statusMsg:
		a.setStatus(string(m))
		return a, nil
	case errMsg:
		a.setError(m.error)
		return a, nil
	}

	// Results and blinks go to every panel: a result may arrive after the
	// user switched away from the tab that asked for it.
	var cmds []tea.Cmd
	for _, t := range panels.AllTabs() {
		p, cmd := a.panels[t].Update(msg)
		a.panels[t] = p
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyName := m.String()
	if a.confirmClear {
		return a.handleConfirmKey(keyName)
	}
	if a.searching {
		return a.handleSearchKey(m)
	}

	scope := scopePanel
	if a.focus == focusHistory {
		scope = scopeHistory
	}
	b := a.keys.Lookup(keyName, scope)
	if b != nil {
		switch b.Action {
		case actionQuit:
			if keyName == "ctrl+c" || a.focus == focusHistory {
				return a, tea.Quit
			}
		case actionNextTab:
			return a, a.setTab(cycleTab(a.active, 1))
		case actionPrevTab:
			return a, a.setTab(cycleTab(a.active, -1))
		case actionTabSimple:
			return a, a.setTab(panels.TabSimple)
		case actionTabIntegral:
			return a, a.setTab(panels.TabIntegral)
		case actionFocusHistory:
			return a, a.toggleHistoryFocus()
		}
	}

	if a.focus == focusPanel {
		p, cmd := a.panels[a.active].Update(m)
		a.panels[a.active] = p
		return a, cmd
	}
	if b == nil {
		return a, nil
	}
	switch b.Action {
	case actionUp:
		if a.cursor > 0 {
			a.cursor--
		}
	case actionDown:
		if a.cursor < len(a.records)-1 {
			a.cursor++
		}
	case actionRestore:
		return a, a.restoreSelected()
	case actionSearch:
		a.searching = true
		a.search.SetValue(a.query)
		a.search.CursorEnd()
		return a, a.search.Focus()
	case actionClear:
		if a.store.Len() > 0 {
			a.confirmClear = true
		}
	case actionBack:
		if a.query != "" {
			a.query = ""
			a.refresh()
			return a, nil
		}
		return a, a.toggleHistoryFocus()
	}
	return a, nil
}

func (a *App) handleConfirmKey(keyName string) (tea.Model, tea.Cmd) {
	b := a.keys.Lookup(keyName, scopeConfirm)
	if b == nil {
		return a, nil
	}
	a.confirmClear = false
	switch b.Action {
	case actionConfirm:
		return a, a.clearCmd()
	case actionQuit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if b := a.keys.Lookup(m.String(), scopeSearch); b != nil {
		switch b.Action {
		case actionConfirm:
			a.searching = false
			a.search.Blur()
			return a, nil
		case actionCancel:
			a.searching = false
			a.search.Blur()
			a.query = ""
			a.refresh()
			return a, nil
		case actionQuit:
			return a, tea.Quit
		}
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.query = strings.TrimSpace(a.search.Value())
	a.cursor = 0
	a.refresh()
	return a, cmd
}

func cycleTab(t panels.Tab, delta int) panels.Tab {
	all := panels.AllTabs()
	for i, x := range all {
		if x == t {
			return all[(i+delta+len(all))%len(all)]
		}
	}
	return all[0]
}

// setTab switches the visible panel. History is never touched here.
func (a *App) setTab(t panels.Tab) tea.Cmd {
	if t == a.active {
		return nil
	}
	a.panels[a.active].Blur()
	a.active = t
	a.log.Debug("tab switched", "tab", t.String())
	if a.focus == focusPanel {
		return a.panels[t].Focus()
	}
	return nil
}

func (a *App) toggleHistoryFocus() tea.Cmd {
	if a.focus == focusHistory {
		a.focus = focusPanel
		return a.panels[a.active].Focus()
	}
	a.focus = focusHistory
	a.panels[a.active].Blur()
	a.cursor = min(a.cursor, max(0, len(a.records)-1))
	return nil
}

// restoreSelected routes the highlighted record to the panel of its kind and
// switches to that tab.
func (a *App) restoreSelected() tea.Cmd {
	if a.cursor < 0 || a.cursor >= len(a.records) {
		return nil
	}
	rec := a.records[a.cursor]
	tab, ok := panels.TabForKind(rec.Kind())
	if !ok {
		a.setError(fmt.Errorf("%w: %q", history.ErrUnknownKind, rec.Kind()))
		return nil
	}
	if err := a.store.RestoreInto(a.panels[tab], rec); err != nil {
		a.setError(err)
		return nil
	}
	a.setTab(tab)
	a.focus = focusPanel
	a.setStatus("restored " + recordTitle(rec))
	return a.panels[tab].Focus()
}

func (a *App) appendCmd(fields map[string]any) tea.Cmd {
	return func() tea.Msg {
		rec, err := a.store.Append(a.ctx, fields)
		switch {
		case errors.Is(err, history.ErrNotPersisted):
			return historyChangedMsg{err: fmt.Errorf("saved in memory only: %w", err)}
		case err != nil:
			return historyChangedMsg{err: fmt.Errorf("not saved: %w", err)}
		}
		return historyChangedMsg{status: "saved " + recordTitle(rec)}
	}
}

func (a *App) clearCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Clear(a.ctx); err != nil {
			return historyChangedMsg{err: fmt.Errorf("clear history: %w", err)}
		}
		return historyChangedMsg{status: "history cleared"}
	}
}

// refresh reloads the sidebar view of the store, applying the search query.
func (a *App) refresh() {
	if a.query != "" {
		a.records = a.store.Search(a.query, 0)
	} else {
		a.records = a.store.Records()
	}
	if a.cursor >= len(a.records) {
		a.cursor = max(0, len(a.records)-1)
	}
}

func (a *App) setStatus(s string) {
	a.status, a.statusErr = s, false
}

func (a *App) setError(err error) {
	a.log.Warn("status error", "err", err)
	a.status, a.statusErr = "error: "+err.Error(), true
}

func (a *App) View() string {
	header := a.renderHeader() + "\n" + a.renderTabs()

	width, height := a.width, a.height
	if width <= 0 {
		width = 100
	}
	bodyHeight := 24
	if height > 0 {
		bodyHeight = max(6, height-lipgloss.Height(header)-2)
	}

	p := a.panels[a.active]
	panelBox := widgets.Func(func(w, h int) string {
		return widgets.Box{
			Title:   p.Title(),
			Content: p.View(max(1, w-4), max(1, h-3)),
			Focused: a.focus == focusPanel,
		}.Render(w, h)
	})
	historyBox := widgets.Func(func(w, h int) string {
		return widgets.Box{
			Title:   "History",
			Content: a.historyView(max(1, w-4), max(1, h-3)),
			Focused: a.focus == focusHistory,
		}.Render(w, h)
	})
	columns := widgets.HStack{Widgets: []widgets.Widget{panelBox, historyBox}, Ratios: []float64{3, 1}, Gap: 1}
	body := header + "\n" + columns.Render(width, bodyHeight)

	scope := scopePanel
	switch {
	case a.confirmClear:
		scope = scopeConfirm
	case a.searching:
		scope = scopeSearch
	case a.focus == focusHistory:
		scope = scopeHistory
	}
	return a.placeWithFooter(body, a.renderStatus(), a.renderFooter(a.keys.HelpBindings(scope)))
}

var _ tea.Model = (*App)(nil)
