package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/tui/widgets"
)

// Simple evaluates expressions and named operations such as "mul 4 5".
type Simple struct {
	deps  Deps
	input textinput.Model
	angle calc.AngleUnit

	result *calc.Calculation
	err    error
	busy   bool
}

type simpleResultMsg struct {
	calc calc.Calculation
	err  error
}

func NewSimple(deps Deps) *Simple {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "2 + 3 * 4, sqrt(16), mul 4 5"
	in.CharLimit = 256
	angle := deps.Angle
	if angle == "" {
		angle = calc.Radians
	}
	return &Simple{deps: deps, input: in, angle: angle}
}

func (s *Simple) Tab() Tab { return TabSimple }
func (s *Simple) Title() string { return "Simple" }
func (s *Simple) Init() tea.Cmd { return textinput.Blink }
func (s *Simple) Focus() tea.Cmd { return s.input.Focus() }
func (s *Simple) Blur() { s.input.Blur() }
func (s *Simple) Input() string { return s.input.Value() }
func (s *Simple) SetInput(v string) { s.input.SetValue(v) }

// Angle is the unit trigonometric functions currently use.
func (s *Simple) Angle() calc.AngleUnit { return s.angle }

// Result is the last successful calculation, if any.
func (s *Simple) Result() *calc.Calculation { return s.result }

// Err is the last evaluation error, if any.
func (s *Simple) Err() error { return s.err }

func (s *Simple) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch m.String() {
		case "enter":
			return s, s.evaluate()
		case "ctrl+t":
			if s.angle == calc.Degrees {
				s.angle = calc.Radians
			} else {
				s.angle = calc.Degrees
			}
			return s, nil
		case "ctrl+l":
			s.input.SetValue("")
			s.result, s.err = nil, nil
			return s, nil
		}
	case simpleResultMsg:
		s.busy = false
		if m.err != nil {
			s.err = m.err
			return s, nil
		}
		c := m.calc
		s.result, s.err = &c, nil
		return s, submit(c.Fields())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Simple) evaluate() tea.Cmd {
	input := strings.TrimSpace(s.input.Value())
	if input == "" {
		return nil
	}
	opts := s.deps.options()
	opts.Angle = s.angle
	s.busy = true
	return func() tea.Msg {
		c, err := calc.Run(input, opts)
		return simpleResultMsg{calc: c, err: err}
	}
}

// RestoreFrom puts a stored simple calculation back into the input and shows
// its result and steps.
func (s *Simple) RestoreFrom(rec history.Record) error {
	if rec.Kind() != history.KindSimple {
		return wrongKind(s, rec)
	}
	expr := rec.Expression()
	if op := rec.String("op"); op != "" {
		// named operations are restored in their typed form
		a, _ := rec.Float("a")
		if b, ok := rec.Float("b"); ok {
			expr = fmt.Sprintf("%s %s %s", op, calc.Format(a, 15), calc.Format(b, 15))
		} else {
			expr = fmt.Sprintf("%s %s", op, calc.Format(a, 15))
		}
	}
	s.input.SetValue(expr)
	s.input.CursorEnd()
	if u := rec.String("angle"); u != "" {
		s.angle = calc.ParseAngle(u)
	}
	result, _ := rec.Float("result")
	display := rec.String("display")
	if display == "" {
		display = rec.Result()
	}
	s.result = &calc.Calculation{
		Expression: rec.Expression(),
		Op:         rec.String("op"),
		Result:     result,
		Display:    display,
		Angle:      s.angle,
		Steps:      rec.Steps(),
	}
	s.err = nil
	return nil
}

func (s *Simple) View(width, height int) string {
	s.input.Width = max(10, width-4)
	lines := []string{
		s.input.View(),
		widgets.LabelStyle.Render(fmt.Sprintf("angle: %s   ctrl+t toggle   ctrl+l clear", s.angle)),
		"",
	}
	switch {
	case s.busy:
		lines = append(lines, widgets.DimStyle.Render("evaluating…"))
	case s.err != nil:
		lines = append(lines, widgets.ErrorStyle.Render("✗ "+s.err.Error()))
	case s.result != nil:
		lines = append(lines,
			widgets.LabelStyle.Render(s.result.Expression+" =")+" "+widgets.ResultStyle.Render(s.result.Display),
			"",
			widgets.TitleStyle.Render("Steps"),
		)
		for i, step := range s.result.Steps {
			lines = append(lines, widgets.ValueStyle.Render(fmt.Sprintf("%2d. %s", i+1, step)))
		}
	default:
		lines = append(lines, widgets.DimStyle.Render("Type an expression and press enter. ans is the last result."))
	}
	return widgets.Text(strings.Join(lines, "\n")).Render(width, height)
}

var _ Panel = (*Simple)(nil)
