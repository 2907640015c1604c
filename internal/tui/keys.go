package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry maps key names to actions per scope. Lookups fall back to the
// global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal  = "global"
	scopePanel   = "panel"
	scopeHistory = "history"
	scopeSearch  = "search"
	scopeConfirm = "confirm"
)

const (
	actionQuit         Action = "quit"
	actionNextTab      Action = "next_tab"
	actionPrevTab      Action = "prev_tab"
	actionTabSimple    Action = "tab_simple"
	actionTabIntegral  Action = "tab_integral"
	actionFocusHistory Action = "focus_history"
	actionEvaluate     Action = "evaluate"
	actionToggle       Action = "toggle"
	actionNavigate     Action = "navigate"
	actionRestore      Action = "restore"
	actionSearch       Action = "search"
	actionClear        Action = "clear"
	actionBack         Action = "back"
	actionConfirm      Action = "confirm"
	actionCancel       Action = "cancel"
	actionUp           Action = "up"
	actionDown         Action = "down"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	reg(scopeGlobal, actionNextTab, []string{"tab"}, "next tab")
	reg(scopeGlobal, actionPrevTab, []string{"shift+tab"}, "prev tab")
	reg(scopeGlobal, actionTabSimple, []string{"ctrl+s"}, "simple")
	reg(scopeGlobal, actionTabIntegral, []string{"ctrl+i"}, "integral")
	reg(scopeGlobal, actionFocusHistory, []string{"ctrl+h"}, "history")
	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	// Panel keys are handled by the panels; they are registered for help only.
	reg(scopePanel, actionEvaluate, []string{"enter"}, "calculate")
	reg(scopePanel, actionToggle, []string{"ctrl+t"}, "angle/method")
	reg(scopePanel, actionFocusHistory, []string{"ctrl+h"}, "history")
	reg(scopePanel, actionNextTab, []string{"tab"}, "next tab")
	reg(scopePanel, actionQuit, []string{"ctrl+c"}, "quit")

	reg(scopeHistory, actionUp, []string{"up", "k"}, "up")
	reg(scopeHistory, actionDown, []string{"down", "j"}, "down")
	reg(scopeHistory, actionRestore, []string{"enter"}, "restore")
	reg(scopeHistory, actionSearch, []string{"/"}, "search")
	reg(scopeHistory, actionClear, []string{"x"}, "clear all")
	reg(scopeHistory, actionBack, []string{"esc", "ctrl+h"}, "back")
	reg(scopeHistory, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeSearch, actionConfirm, []string{"enter"}, "keep results")
	reg(scopeSearch, actionCancel, []string{"esc"}, "cancel")

	reg(scopeConfirm, actionConfirm, []string{"y"}, "clear history")
	reg(scopeConfirm, actionCancel, []string{"n", "esc"}, "cancel")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 || r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup finds the binding for keyName in scope, then in the global scope.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		// single runes keep their case so "X" and "x" stay distinct
		return trimmed
	}
	s := strings.ToLower(strings.ReplaceAll(trimmed, " ", ""))
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "ctl+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
