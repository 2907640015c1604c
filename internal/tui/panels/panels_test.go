package panels

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/storage"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and feeds its message back into p, returning whatever the
// panel emits next.
func run(t *testing.T, p Panel, cmd tea.Cmd) (Panel, tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	p, next := p.Update(cmd())
	if next == nil {
		return p, nil
	}
	return p, next()
}

func storedRecord(t *testing.T, fields map[string]any) history.Record {
	t.Helper()
	s, err := history.New(context.Background(), history.NewKeyedPersistence(storage.NewMemory(), "calculatorHistory"))
	require.NoError(t, err)
	rec, err := s.Append(context.Background(), fields)
	require.NoError(t, err)
	return rec
}

func TestTabs(t *testing.T) {
	require.Equal(t, []Tab{TabSimple, TabIntegral}, AllTabs())
	require.Equal(t, "Integral", TabIntegral.String())
	require.Equal(t, history.KindIntegral, TabIntegral.Kind())
	require.Equal(t, TabIntegral, ParseTab(" Integral "))
	require.Equal(t, TabSimple, ParseTab("matrix"))

	tab, ok := TabForKind(history.KindSimple)
	require.True(t, ok)
	require.Equal(t, TabSimple, tab)
	_, ok = TabForKind("matrix")
	require.False(t, ok)

	for _, tab := range AllTabs() {
		require.Equal(t, tab, New(tab, Deps{}).Tab())
	}
	require.Panics(t, func() { New(Tab(9), Deps{}) })
}

func TestSimpleSubmits(t *testing.T) {
	var p Panel = NewSimple(Deps{})
	p.Focus()
	p.(*Simple).SetInput("2 + 3")

	p, cmd := p.Update(key("enter"))
	p, msg := run(t, p, cmd)

	sub, ok := msg.(SubmitMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, "simple", sub.Fields["type"])
	require.Equal(t, "2 + 3", sub.Fields["expression"])
	require.Equal(t, 5.0, sub.Fields["result"])

	s := p.(*Simple)
	require.NoError(t, s.Err())
	require.Equal(t, "5", s.Result().Display)
	require.Contains(t, s.View(60, 20), "Result: 5")
}

func TestSimpleUsesAns(t *testing.T) {
	p := NewSimple(Deps{Ans: func() float64 { return 21 }})
	p.SetInput("ans * 2")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	require.Equal(t, 42.0, msg.(SubmitMsg).Fields["result"])
}

func TestSimpleErrorDoesNotSubmit(t *testing.T) {
	p := NewSimple(Deps{})
	p.SetInput("1/0")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	require.Nil(t, msg)
	require.True(t, calc.IsKind(p.Err(), calc.KindDivByZero))
	require.Nil(t, p.Result())
}

func TestSimpleEmptyInputIsNoop(t *testing.T) {
	p := NewSimple(Deps{})
	_, cmd := p.Update(key("enter"))
	require.Nil(t, cmd)
}

func TestSimpleAngleToggle(t *testing.T) {
	p := NewSimple(Deps{})
	require.Equal(t, calc.Radians, p.Angle())
	p.Update(key("ctrl+t"))
	require.Equal(t, calc.Degrees, p.Angle())

	p.SetInput("sin(90)")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	require.Equal(t, 1.0, msg.(SubmitMsg).Fields["result"])
	require.Equal(t, "deg", msg.(SubmitMsg).Fields["angle"])
}

func TestSimpleRestore(t *testing.T) {
	c, err := calc.Evaluate("sin(90)", calc.Options{Angle: calc.Degrees})
	require.NoError(t, err)
	rec := storedRecord(t, c.Fields())

	p := NewSimple(Deps{})
	require.NoError(t, p.RestoreFrom(rec))
	require.Equal(t, "sin(90)", p.Input())
	require.Equal(t, calc.Degrees, p.Angle())
	require.Equal(t, "1", p.Result().Display)
	require.Equal(t, c.Steps, p.Result().Steps)

	op, err := calc.Operate("mul", 4, 5, calc.Options{})
	require.NoError(t, err)
	require.NoError(t, p.RestoreFrom(storedRecord(t, op.Fields())))
	require.Equal(t, "mul 4 5", p.Input())

	in, err := calc.IntegrateIndefinite("x", "x", calc.IntegralOptions{})
	require.NoError(t, err)
	err = p.RestoreFrom(storedRecord(t, in.Fields()))
	require.ErrorContains(t, err, "simple panel cannot restore")
}

func TestIntegralDefinite(t *testing.T) {
	var p Panel = NewIntegral(Deps{})
	p.(*Integral).SetInputs("x^2", "x", "0", "3")

	p, cmd := p.Update(key("enter"))
	p, msg := run(t, p, cmd)

	sub, ok := msg.(SubmitMsg)
	require.True(t, ok, "got %T", msg)
	require.Equal(t, "integral", sub.Fields["type"])
	require.Equal(t, 9.0, sub.Fields["result"])
	require.Equal(t, "simpson", sub.Fields["method"])

	in := p.(*Integral)
	require.NoError(t, in.Err())
	require.NotEmpty(t, in.plot)
	require.Equal(t, "x^3 / 3", in.Result().Antiderivative)
	view := in.View(80, 40)
	require.Contains(t, view, "Result: 9")
	require.Greater(t, strings.Count(view, "\n"), strings.Count(in.View(80, 10), "\n"),
		"a tall pane adds the plot, a short one shows text only")
}

func TestIntegralBoundsAreExpressions(t *testing.T) {
	p := NewIntegral(Deps{})
	p.SetInputs("sin(x)", "x", "0", "pi")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	require.InDelta(t, 2.0, msg.(SubmitMsg).Fields["result"], 1e-9)
}

func TestIntegralIndefinite(t *testing.T) {
	p := NewIntegral(Deps{})
	p.SetInputs("cos(2x)", "x", "", "")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	sub := msg.(SubmitMsg)
	require.Equal(t, "sin(2 * x) / 2 + C", sub.Fields["result"])
	_, hasLower := sub.Fields["lower"]
	require.False(t, hasLower)
	require.Empty(t, p.plot)
}

func TestIntegralErrors(t *testing.T) {
	p := NewIntegral(Deps{})
	p.SetInputs("x", "x", "0", "")
	_, cmd := p.Update(key("enter"))
	_, msg := run(t, p, cmd)
	require.Nil(t, msg)
	require.ErrorContains(t, p.Err(), "both bounds")

	p.SetInputs("sqrt(x)", "x", "-1", "1")
	_, cmd = p.Update(key("enter"))
	_, msg = run(t, p, cmd)
	require.Nil(t, msg)
	require.ErrorIs(t, p.Err(), calc.ErrNotIntegrable)

	p.SetInputs("x", "pi", "0", "1")
	_, cmd = p.Update(key("enter"))
	run(t, p, cmd)
	require.True(t, calc.IsKind(p.Err(), calc.KindSyntax))
}

func TestIntegralMethodCycleAndFields(t *testing.T) {
	p := NewIntegral(Deps{Method: calc.Adaptive})
	require.Equal(t, calc.Adaptive, p.Method())
	p.Update(key("ctrl+t"))
	require.Equal(t, calc.Simpson, p.Method())
	p.Update(key("ctrl+t"))
	require.Equal(t, calc.Trapezoid, p.Method())

	p.Focus()
	require.Equal(t, fieldExpr, p.focus)
	p.Update(key("up"))
	require.Equal(t, fieldUpper, p.focus)
	p.Update(key("down"))
	p.Update(key("down"))
	require.Equal(t, fieldVar, p.focus)
	require.True(t, p.inputs[fieldVar].Focused())
	require.False(t, p.inputs[fieldExpr].Focused())
}

func TestIntegralRestore(t *testing.T) {
	in, err := calc.Integrate("2x", "x", 1, 2, calc.IntegralOptions{Method: calc.Midpoint, Intervals: 10})
	require.NoError(t, err)
	rec := storedRecord(t, in.Fields())

	p := NewIntegral(Deps{})
	require.NoError(t, p.RestoreFrom(rec))
	require.Equal(t, "2x", p.inputs[fieldExpr].Value())
	require.Equal(t, "1", p.inputs[fieldLower].Value())
	require.Equal(t, "2", p.inputs[fieldUpper].Value())
	require.Equal(t, calc.Midpoint, p.Method())
	require.Equal(t, "3", p.Result().Display)
	require.Equal(t, 10, p.Result().Intervals)
	require.True(t, strings.Contains(p.View(80, 30), "Result: 3"))

	c, err := calc.Evaluate("1+1", calc.Options{})
	require.NoError(t, err)
	require.Error(t, p.RestoreFrom(storedRecord(t, c.Fields())))
}
