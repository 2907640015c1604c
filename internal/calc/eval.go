package calc

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// AngleUnit selects how trigonometric functions read and return angles.
type AngleUnit string

const (
	Radians AngleUnit = "rad"
	Degrees AngleUnit = "deg"
)

// ParseAngle maps config strings to a unit; anything but deg means radians.
func ParseAngle(s string) AngleUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return Degrees
	default:
		return Radians
	}
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type function struct {
	arity int // -1 means one or more
	call  func(ev *evaluator, args []float64, pos int) (float64, error)
}

var functions map[string]function

func init() {
	functions = map[string]function{
		"sin":   {1, trig(math.Sin)},
		"cos":   {1, trig(math.Cos)},
		"tan":   {1, tangent},
		"asin":  {1, arcTrig(math.Asin, -1, 1)},
		"acos":  {1, arcTrig(math.Acos, -1, 1)},
		"atan":  {1, arcTrig(math.Atan, math.Inf(-1), math.Inf(1))},
		"sinh":  {1, plain(math.Sinh)},
		"cosh":  {1, plain(math.Cosh)},
		"tanh":  {1, plain(math.Tanh)},
		"sqrt":  {1, sqrt},
		"cbrt":  {1, plain(math.Cbrt)},
		"abs":   {1, plain(math.Abs)},
		"exp":   {1, plain(math.Exp)},
		"floor": {1, plain(math.Floor)},
		"ceil":  {1, plain(math.Ceil)},
		"round": {1, plain(math.Round)},
		"ln":    {1, positive("ln", math.Log)},
		"log2":  {1, positive("log2", math.Log2)},
		"log":   {-1, logFn},
		"root":  {2, rootFn},
		"min":   {-1, extremum(math.Min)},
		"max":   {-1, extremum(math.Max)},
	}
}

// Names lists every function and constant, sorted.
func Names() []string {
	out := make([]string, 0, len(functions)+len(constants)+1)
	for k := range functions {
		out = append(out, k)
	}
	for k := range constants {
		out = append(out, k)
	}
	out = append(out, "ans")
	sort.Strings(out)
	return out
}

// IsReserved reports whether name is a built-in function or constant.
func IsReserved(name string) bool {
	_, f := functions[name]
	_, c := constants[name]
	return f || c || name == "ans"
}

type evaluator struct {
	angle     AngleUnit
	precision int
	vars      map[string]float64
	steps     []string
	record    bool
}

func (ev *evaluator) step(format string, args ...any) {
	if ev.record {
		ev.steps = append(ev.steps, fmt.Sprintf(format, args...))
	}
}

func (ev *evaluator) show(v float64) string { return Format(v, ev.precision) }

func (ev *evaluator) eval(n Node) (float64, error) {
	switch t := n.(type) {
	case Num:
		return t.Value, nil
	case Var:
		return ev.lookup(t)
	case Unary:
		x, err := ev.eval(t.X)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case Binary:
		return ev.binary(t)
	case Call:
		return ev.call(t)
	case Factorial:
		x, err := ev.eval(t.X)
		if err != nil {
			return 0, err
		}
		v, err := factorial(x)
		if err != nil {
			return 0, err
		}
		ev.step("%s! = %s", ev.show(x), ev.show(v))
		return v, nil
	default:
		return 0, fmt.Errorf("calc: unhandled node %T", n)
	}
}

func (ev *evaluator) lookup(v Var) (float64, error) {
	if x, ok := ev.vars[v.Name]; ok {
		if v.Name == "ans" {
			ev.step("ans = %s", ev.show(x))
		}
		return x, nil
	}
	if x, ok := constants[v.Name]; ok {
		return x, nil
	}
	e := errAt(KindUnknownIdent, v.Pos, "%q", v.Name)
	e.Suggest = suggest(v.Name, ev.names())
	return 0, e
}

func (ev *evaluator) names() []string {
	names := Names()
	for k := range ev.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (ev *evaluator) binary(b Binary) (float64, error) {
	l, err := ev.eval(b.L)
	if err != nil {
		return 0, err
	}
	r, err := ev.eval(b.R)
	if err != nil {
		return 0, err
	}
	v, err := applyOp(b.Op, l, r, b.Pos)
	if err != nil {
		return 0, err
	}
	ev.step("%s %s %s = %s", ev.show(l), b.Op, ev.show(r), ev.show(v))
	return v, nil
}

func applyOp(op string, l, r float64, pos int) (float64, error) {
	var v float64
	switch op {
	case "+":
		v = l + r
	case "-":
		v = l - r
	case "*":
		v = l * r
	case "/":
		if r == 0 {
			return 0, errAt(KindDivByZero, pos, "%s / 0", Format(l, 10))
		}
		v = l / r
	case "%":
		if r == 0 {
			return 0, errAt(KindDivByZero, pos, "%s mod 0", Format(l, 10))
		}
		v = math.Mod(l, r)
	case "^":
		if l == 0 && r < 0 {
			return 0, errAt(KindDivByZero, pos, "0 to a negative power")
		}
		v = math.Pow(l, r)
	default:
		return 0, errAt(KindSyntax, pos, "unknown operator %q", op)
	}
	return finite(v, pos)
}

func finite(v float64, pos int) (float64, error) {
	switch {
	case math.IsNaN(v):
		return 0, errAt(KindDomain, pos, "result is not a real number")
	case math.IsInf(v, 0):
		return 0, errAt(KindOverflow, pos, "result is too large")
	}
	return v, nil
}

func (ev *evaluator) call(c Call) (float64, error) {
	f, ok := functions[c.Name]
	if !ok {
		return ev.callNonFunction(c)
	}
	if (f.arity >= 0 && len(c.Args) != f.arity) || (f.arity < 0 && len(c.Args) == 0) {
		want := fmt.Sprint(f.arity)
		if f.arity < 0 {
			want = "at least 1"
		}
		return 0, errAt(KindArity, c.Pos, "%s takes %s, got %d", c.Name, want, len(c.Args))
	}
	args := make([]float64, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.eval(a)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	v, err := f.call(ev, args, c.Pos)
	if err != nil {
		return 0, err
	}
	if v, err = finite(v, c.Pos); err != nil {
		return 0, err
	}
	strs := make([]string, len(args))
	for i, a := range args {
		strs[i] = ev.show(a)
	}
	ev.step("%s(%s) = %s", c.Name, strings.Join(strs, ", "), ev.show(v))
	return v, nil
}

// callNonFunction treats name(x) as name * x when name is a value, so x(x+1)
// and pi(2) multiply.
func (ev *evaluator) callNonFunction(c Call) (float64, error) {
	_, isVar := ev.vars[c.Name]
	_, isConst := constants[c.Name]
	if (isVar || isConst) && len(c.Args) == 1 {
		return ev.binary(Binary{Op: "*", L: Var{Name: c.Name, Pos: c.Pos}, R: c.Args[0], Pos: c.Pos})
	}
	e := errAt(KindUnknownIdent, c.Pos, "function %q", c.Name)
	fnames := make([]string, 0, len(functions))
	for k := range functions {
		fnames = append(fnames, k)
	}
	sort.Strings(fnames)
	e.Suggest = suggest(c.Name, fnames)
	return 0, e
}

func plain(f func(float64) float64) func(*evaluator, []float64, int) (float64, error) {
	return func(_ *evaluator, a []float64, _ int) (float64, error) { return f(a[0]), nil }
}

func (ev *evaluator) toRad(x float64) float64 {
	if ev.angle == Degrees {
		return x * math.Pi / 180
	}
	return x
}

func (ev *evaluator) fromRad(x float64) float64 {
	if ev.angle == Degrees {
		return x * 180 / math.Pi
	}
	return x
}

// trig snaps results within 1e-15 of zero, so sin(180°) prints 0.
func trig(f func(float64) float64) func(*evaluator, []float64, int) (float64, error) {
	return func(ev *evaluator, a []float64, _ int) (float64, error) {
		v := f(ev.toRad(a[0]))
		if math.Abs(v) < 1e-15 {
			v = 0
		}
		return v, nil
	}
}

func tangent(ev *evaluator, a []float64, pos int) (float64, error) {
	if ev.angle == Degrees && math.Mod(math.Abs(a[0]), 180) == 90 {
		return 0, errAt(KindDomain, pos, "tan(%s°) is undefined", Format(a[0], 10))
	}
	return trig(math.Tan)(ev, a, pos)
}

func arcTrig(f func(float64) float64, lo, hi float64) func(*evaluator, []float64, int) (float64, error) {
	return func(ev *evaluator, a []float64, pos int) (float64, error) {
		if a[0] < lo || a[0] > hi {
			return 0, errAt(KindDomain, pos, "argument %s outside [%g, %g]", Format(a[0], 10), lo, hi)
		}
		return ev.fromRad(f(a[0])), nil
	}
}

func sqrt(_ *evaluator, a []float64, pos int) (float64, error) {
	if a[0] < 0 {
		return 0, errAt(KindDomain, pos, "square root of negative number %s", Format(a[0], 10))
	}
	return math.Sqrt(a[0]), nil
}

func positive(name string, f func(float64) float64) func(*evaluator, []float64, int) (float64, error) {
	return func(_ *evaluator, a []float64, pos int) (float64, error) {
		if a[0] <= 0 {
			return 0, errAt(KindDomain, pos, "%s of non-positive number %s", name, Format(a[0], 10))
		}
		return f(a[0]), nil
	}
}

// logFn is log10(x) with one argument and log base b of x with two.
func logFn(_ *evaluator, a []float64, pos int) (float64, error) {
	switch len(a) {
	case 1:
		if a[0] <= 0 {
			return 0, errAt(KindDomain, pos, "log of non-positive number %s", Format(a[0], 10))
		}
		return math.Log10(a[0]), nil
	case 2:
		return logBase(a[0], a[1], pos)
	default:
		return 0, errAt(KindArity, pos, "log takes 1 or 2, got %d", len(a))
	}
}

func logBase(b, x float64, pos int) (float64, error) {
	if b <= 0 || b == 1 {
		return 0, errAt(KindDomain, pos, "log base %s", Format(b, 10))
	}
	if x <= 0 {
		return 0, errAt(KindDomain, pos, "log of non-positive number %s", Format(x, 10))
	}
	return math.Log(x) / math.Log(b), nil
}

func rootFn(_ *evaluator, a []float64, pos int) (float64, error) {
	return nthRoot(a[0], a[1], pos)
}

// nthRoot allows odd roots of negative numbers.
func nthRoot(n, x float64, pos int) (float64, error) {
	if n == 0 {
		return 0, errAt(KindDivByZero, pos, "zeroth root")
	}
	if x < 0 {
		if n == math.Trunc(n) && math.Mod(math.Abs(n), 2) == 1 {
			return -math.Pow(-x, 1/n), nil
		}
		return 0, errAt(KindDomain, pos, "even root of negative number %s", Format(x, 10))
	}
	return math.Pow(x, 1/n), nil
}

func extremum(f func(a, b float64) float64) func(*evaluator, []float64, int) (float64, error) {
	return func(_ *evaluator, a []float64, _ int) (float64, error) {
		v := a[0]
		for _, x := range a[1:] {
			v = f(v, x)
		}
		return v, nil
	}
}

func factorial(x float64) (float64, error) {
	if x < 0 || x != math.Trunc(x) {
		return 0, errAt(KindDomain, -1, "factorial of %s", Format(x, 10))
	}
	if x > 170 {
		return 0, errAt(KindOverflow, -1, "%s! is too large", Format(x, 10))
	}
	v := 1.0
	for i := 2.0; i <= x; i++ {
		v *= i
	}
	return v, nil
}
