package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/calcdeck/internal/calc"
	"github.com/jask/calcdeck/internal/history"
	"github.com/jask/calcdeck/internal/tui/widgets"
)

const (
	fieldExpr = iota
	fieldVar
	fieldLower
	fieldUpper
	fieldCount
)

const plotSamples = 60

var integralLabels = [fieldCount]string{"f(x)", "var", "from", "to"}

// Integral computes definite and indefinite integrals. Empty bounds mean an
// indefinite integral.
type Integral struct {
	deps   Deps
	inputs [fieldCount]textinput.Model
	focus  int
	method calc.Method

	result *calc.Integral
	plot   []widgets.Point
	err    error
	busy   bool
}

type integralResultMsg struct {
	in   calc.Integral
	plot []widgets.Point
	err  error
}

func NewIntegral(deps Deps) *Integral {
	p := &Integral{deps: deps, method: calc.ParseMethod(string(deps.Method))}
	placeholders := [fieldCount]string{"x^2 + 1", "x", "0", "1"}
	for i := range p.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = 256
		p.inputs[i] = in
	}
	p.inputs[fieldVar].SetValue("x")
	return p
}

func (p *Integral) Tab() Tab { return TabIntegral }
func (p *Integral) Title() string { return "Integral" }
func (p *Integral) Init() tea.Cmd { return textinput.Blink }

func (p *Integral) Focus() tea.Cmd { return p.inputs[p.focus].Focus() }

func (p *Integral) Blur() {
	for i := range p.inputs {
		p.inputs[i].Blur()
	}
}

// Method is the quadrature rule used for definite integrals.
func (p *Integral) Method() calc.Method { return p.method }

func (p *Integral) Result() *calc.Integral { return p.result }
func (p *Integral) Err() error { return p.err }

// SetInputs fills the expression, variable and bounds.
func (p *Integral) SetInputs(expr, variable, lower, upper string) {
	p.inputs[fieldExpr].SetValue(expr)
	p.inputs[fieldVar].SetValue(variable)
	p.inputs[fieldLower].SetValue(lower)
	p.inputs[fieldUpper].SetValue(upper)
}

func (p *Integral) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch m.String() {
		case "enter":
			return p, p.integrate()
		case "down":
			return p, p.move(1)
		case "up":
			return p, p.move(-1)
		case "ctrl+t":
			p.method = nextMethod(p.method)
			return p, nil
		case "ctrl+l":
			for i := range p.inputs {
				p.inputs[i].SetValue("")
			}
			p.inputs[fieldVar].SetValue("x")
			p.result, p.plot, p.err = nil, nil, nil
			return p, nil
		}
	case integralResultMsg:
		p.busy = false
		if m.err != nil {
			p.err = m.err
			return p, nil
		}
		in := m.in
		p.result, p.plot, p.err = &in, m.plot, nil
		return p, submit(in.Fields())
	}
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

func (p *Integral) move(delta int) tea.Cmd {
	p.inputs[p.focus].Blur()
	p.focus = (p.focus + delta + fieldCount) % fieldCount
	return p.inputs[p.focus].Focus()
}

func nextMethod(m calc.Method) calc.Method {
	all := calc.Methods()
	for i, x := range all {
		if x == m {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (p *Integral) integrate() tea.Cmd {
	expr := strings.TrimSpace(p.inputs[fieldExpr].Value())
	variable := strings.TrimSpace(p.inputs[fieldVar].Value())
	lower := strings.TrimSpace(p.inputs[fieldLower].Value())
	upper := strings.TrimSpace(p.inputs[fieldUpper].Value())
	if expr == "" {
		return nil
	}
	opts := calc.IntegralOptions{
		Options:   p.deps.options(),
		Method:    p.method,
		Intervals: p.deps.Intervals,
	}
	p.busy = true
	return func() tea.Msg {
		in, pts, err := runIntegral(expr, variable, lower, upper, opts)
		return integralResultMsg{in: in, plot: pts, err: err}
	}
}

func runIntegral(expr, variable, lower, upper string, opts calc.IntegralOptions) (calc.Integral, []widgets.Point, error) {
	if lower == "" && upper == "" {
		in, err := calc.IntegrateIndefinite(expr, variable, opts)
		return in, nil, err
	}
	if lower == "" || upper == "" {
		return calc.Integral{}, nil, fmt.Errorf("both bounds are required for a definite integral")
	}
	a, err := calc.Value(lower, opts.Options)
	if err != nil {
		return calc.Integral{}, nil, fmt.Errorf("lower bound: %w", err)
	}
	b, err := calc.Value(upper, opts.Options)
	if err != nil {
		return calc.Integral{}, nil, fmt.Errorf("upper bound: %w", err)
	}
	in, err := calc.Integrate(expr, variable, a, b, opts)
	if err != nil {
		return calc.Integral{}, nil, err
	}
	samples, err := calc.Sample(expr, variable, a, b, plotSamples, opts.Options)
	if err != nil {
		return in, nil, nil
	}
	pts := make([]widgets.Point, len(samples))
	for i, s := range samples {
		pts[i] = widgets.Point{X: s.X, Y: s.Y}
	}
	return in, pts, nil
}

// RestoreFrom fills the inputs from a stored integral and shows its result.
// The plot is not restored; pressing enter recomputes it.
func (p *Integral) RestoreFrom(rec history.Record) error {
	if rec.Kind() != history.KindIntegral {
		return wrongKind(p, rec)
	}
	variable := rec.String("variable")
	if variable == "" {
		variable = "x"
	}
	in := calc.Integral{
		Expression:     rec.Expression(),
		Variable:       variable,
		Antiderivative: rec.String("antiderivative"),
		Display:        rec.String("display"),
		Steps:          rec.Steps(),
	}
	if in.Display == "" {
		in.Display = rec.Result()
	}
	lower, okL := rec.Float("lower")
	upper, okU := rec.Float("upper")
	var lo, hi string
	if okL && okU {
		in.Definite, in.Lower, in.Upper = true, lower, upper
		in.Value, _ = rec.Float("numeric")
		in.Intervals = intField(rec, "intervals")
		lo, hi = calc.Format(lower, 15), calc.Format(upper, 15)
	}
	if m := rec.String("method"); m != "" {
		p.method = calc.ParseMethod(m)
		in.Method = p.method
	}
	p.SetInputs(in.Expression, variable, lo, hi)
	p.result, p.plot, p.err = &in, nil, nil
	return nil
}

func intField(rec history.Record, key string) int {
	v, _ := rec.Float(key)
	return int(v)
}

func (p *Integral) View(width, height int) string {
	inputWidth := max(8, width-10)
	lines := make([]string, 0, 16)
	for i := range p.inputs {
		p.inputs[i].Width = inputWidth
		label := widgets.LabelStyle.Render(fmt.Sprintf("%-5s", integralLabels[i]))
		if i == p.focus && p.inputs[i].Focused() {
			label = widgets.CursorStyle.Render(fmt.Sprintf("%-5s", integralLabels[i]))
		}
		lines = append(lines, label+" "+p.inputs[i].View())
	}
	lines = append(lines,
		widgets.LabelStyle.Render(fmt.Sprintf("method: %s   ctrl+t cycle   ↑/↓ field   ctrl+l clear", p.method)),
		"",
	)

	switch {
	case p.busy:
		lines = append(lines, widgets.DimStyle.Render("integrating…"))
	case p.err != nil:
		lines = append(lines, widgets.ErrorStyle.Render("✗ "+p.err.Error()))
	case p.result != nil:
		lines = append(lines, p.summary()...)
	default:
		lines = append(lines, widgets.DimStyle.Render("Leave both bounds empty for an indefinite integral."))
	}

	text := strings.Join(lines, "\n")
	used := lipgloss.Height(text)
	plotHeight := height - used - 1
	if len(p.plot) < 2 || plotHeight < 4 {
		return widgets.Text(text).Render(width, height)
	}
	stack := widgets.VStack{
		Widgets: []widgets.Widget{widgets.Text(text), widgets.Plot{Points: p.plot}},
		Spacing: 1,
		Ratios:  []float64{float64(used), float64(plotHeight)},
	}
	return stack.Render(width, used+1+plotHeight)
}

func (p *Integral) summary() []string {
	in := p.result
	var out []string
	if in.Definite {
		out = append(out, widgets.LabelStyle.Render(fmt.Sprintf("∫[%s, %s] %s d%s =",
			calc.Format(in.Lower, 6), calc.Format(in.Upper, 6), in.Expression, in.Variable))+
			" "+widgets.ResultStyle.Render(in.Display))
		if in.Antiderivative != "" {
			out = append(out, widgets.LabelStyle.Render("F("+in.Variable+") = ")+widgets.ValueStyle.Render(in.Antiderivative))
		}
	} else {
		out = append(out, widgets.LabelStyle.Render(fmt.Sprintf("∫ %s d%s =", in.Expression, in.Variable))+
			" "+widgets.ResultStyle.Render(in.Display))
	}
	if len(in.Steps) > 0 {
		out = append(out, "", widgets.TitleStyle.Render("Steps"))
		for i, step := range in.Steps {
			out = append(out, widgets.ValueStyle.Render(fmt.Sprintf("%2d. %s", i+1, step)))
		}
	}
	return out
}

var _ Panel = (*Integral)(nil)
