// Package calc parses and evaluates calculator expressions, explains each
// evaluation step, and integrates expressions numerically and symbolically.
package calc

import (
	"fmt"
	"sort"
	"strings"
)

// Options tune evaluation. The zero value means radians, DefaultPrecision and
// ans = 0.
type Options struct {
	Angle     AngleUnit
	Precision int
	Ans       float64
	Vars      map[string]float64
}

func (o Options) evaluator(record bool) *evaluator {
	prec := o.Precision
	if prec <= 0 {
		prec = DefaultPrecision
	}
	vars := make(map[string]float64, len(o.Vars)+1)
	vars["ans"] = o.Ans
	for k, v := range o.Vars {
		vars[k] = v
	}
	angle := o.Angle
	if angle == "" {
		angle = Radians
	}
	return &evaluator{angle: angle, precision: prec, vars: vars, record: record}
}

// Calculation is the outcome of a simple evaluation.
type Calculation struct {
	Expression string
	Op         string // set by Operate and Apply
	A, B       float64
	Operands   int
	Result     float64
	Display    string
	Angle      AngleUnit
	Steps      []string
}

// Fields returns the history fields for c.
func (c Calculation) Fields() map[string]any {
	f := map[string]any{
		"type":       "simple",
		"expression": c.Expression,
		"result":     c.Result,
		"display":    c.Display,
		"angle":      string(c.Angle),
		"steps":      c.Steps,
	}
	if c.Op != "" {
		f["op"] = c.Op
		f["a"] = c.A
		if c.Operands == 2 {
			f["b"] = c.B
		}
	}
	return f
}

// Evaluate parses and evaluates expr.
func Evaluate(expr string, opts Options) (Calculation, error) {
	n, err := Parse(expr)
	if err != nil {
		return Calculation{}, err
	}
	c, err := EvaluateNode(n, opts)
	if err != nil {
		return Calculation{}, err
	}
	c.Expression = strings.TrimSpace(expr)
	return c, nil
}

// EvaluateNode evaluates an already parsed expression.
func EvaluateNode(n Node, opts Options) (Calculation, error) {
	ev := opts.evaluator(true)
	v, err := ev.eval(n)
	if err != nil {
		return Calculation{}, err
	}
	c := Calculation{
		Expression: n.String(),
		Result:     Round(v, ev.precision),
		Display:    Format(v, ev.precision),
		Angle:      ev.angle,
	}
	c.Steps = append(ev.steps, "Result: "+c.Display)
	return c, nil
}

// Value evaluates expr without recording steps; bounds and constants use it.
func Value(expr string, opts Options) (float64, error) {
	n, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return opts.evaluator(false).eval(n)
}

var binaryOps = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
	"pow": "^",
	"mod": "%",
}

// Ops lists the operation names Operate accepts.
func Ops() []string {
	out := []string{"root", "log"}
	for k := range binaryOps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Operate applies a named binary operation: add sub mul div pow mod root log.
// root(a, b) is the a-th root of b and log(a, b) is log base a of b.
func Operate(op string, a, b float64, opts Options) (Calculation, error) {
	op = strings.ToLower(op)
	ev := opts.evaluator(true)
	var (
		v    float64
		err  error
		expr string
	)
	switch op {
	case "root":
		expr = fmt.Sprintf("root(%s, %s)", ev.show(a), ev.show(b))
		v, err = nthRoot(a, b, -1)
	case "log":
		expr = fmt.Sprintf("log(%s, %s)", ev.show(a), ev.show(b))
		v, err = logBase(a, b, -1)
	default:
		sym, ok := binaryOps[op]
		if !ok {
			e := errAt(KindUnknownIdent, -1, "operation %q", op)
			e.Suggest = suggest(op, Ops())
			return Calculation{}, e
		}
		expr = fmt.Sprintf("%s %s %s", ev.show(a), sym, ev.show(b))
		v, err = applyOp(sym, a, b, -1)
	}
	if err != nil {
		return Calculation{}, err
	}
	if v, err = finite(v, -1); err != nil {
		return Calculation{}, err
	}
	display := ev.show(v)
	return Calculation{
		Expression: expr,
		Op:         op,
		A:          a,
		B:          b,
		Operands:   2,
		Result:     Round(v, ev.precision),
		Display:    display,
		Angle:      ev.angle,
		Steps:      []string{expr + " = " + display, "Result: " + display},
	}, nil
}

// Apply applies a one-argument function by name, such as sqrt or sin.
func Apply(fn string, x float64, opts Options) (Calculation, error) {
	fn = strings.ToLower(fn)
	f, ok := functions[fn]
	if !ok || f.arity == 2 {
		e := errAt(KindUnknownIdent, -1, "function %q", fn)
		e.Suggest = suggest(fn, Names())
		return Calculation{}, e
	}
	c, err := EvaluateNode(Call{Name: fn, Args: []Node{Num{Value: x}}, Pos: -1}, opts)
	if err != nil {
		return Calculation{}, err
	}
	c.Op, c.A, c.Operands = fn, x, 1
	return c, nil
}

// Run evaluates user input. "op a b" with a binary operation name and
// "fn x" with a one-argument function go through Operate and Apply; anything
// else is an expression.
func Run(input string, opts Options) (Calculation, error) {
	fields := strings.Fields(input)
	if len(fields) >= 2 && len(fields) <= 3 {
		name := strings.ToLower(fields[0])
		args := make([]float64, 0, 2)
		for _, f := range fields[1:] {
			v, err := Value(f, opts)
			if err != nil {
				args = nil
				break
			}
			args = append(args, v)
		}
		_, isOp := binaryOps[name]
		isOp = isOp || name == "root" || name == "log"
		f, isFn := functions[name]
		switch {
		case len(args) == 2 && isOp:
			return Operate(name, args[0], args[1], opts)
		case len(args) == 1 && isFn && f.arity != 2:
			return Apply(name, args[0], opts)
		}
	}
	return Evaluate(input, opts)
}
