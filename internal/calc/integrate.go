package calc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Method is a numeric quadrature rule.
type Method string

const (
	Simpson   Method = "simpson"
	Trapezoid Method = "trapezoid"
	Midpoint  Method = "midpoint"
	Adaptive  Method = "adaptive"
)

// Methods lists the quadrature rules in cycle order.
func Methods() []Method { return []Method{Simpson, Trapezoid, Midpoint, Adaptive} }

// ParseMethod maps a name to a Method; unknown names mean Simpson.
func ParseMethod(s string) Method {
	for _, m := range Methods() {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m
		}
	}
	return Simpson
}

func (m Method) label() string {
	switch m {
	case Trapezoid:
		return "trapezoidal rule"
	case Midpoint:
		return "midpoint rule"
	case Adaptive:
		return "adaptive Simpson's rule"
	default:
		return "Simpson's rule"
	}
}

const (
	DefaultIntervals = 1000
	DefaultTolerance = 1e-10
	maxAdaptiveDepth = 50
)

// IntegralOptions tune Integrate.
type IntegralOptions struct {
	Options
	Method    Method
	Intervals int
	Tolerance float64 // adaptive only
}

// Integral is the outcome of a definite or indefinite integration.
type Integral struct {
	Expression     string
	Variable       string
	Definite       bool
	Lower, Upper   float64
	Method         Method
	Intervals      int
	Value          float64 // numeric estimate, definite only
	Antiderivative string  // empty when none was found
	Exact          float64 // F(b) - F(a), set when HasExact
	HasExact       bool
	Display        string
	Steps          []string
}

// Result is the value reported to the user: the exact value when the
// antiderivative could be evaluated, otherwise the numeric estimate.
func (in Integral) Result() float64 {
	if in.HasExact {
		return in.Exact
	}
	return in.Value
}

// Fields returns the history fields for in.
func (in Integral) Fields() map[string]any {
	f := map[string]any{
		"type":       "integral",
		"expression": in.Expression,
		"variable":   in.Variable,
		"display":    in.Display,
		"steps":      in.Steps,
	}
	if in.Antiderivative != "" {
		f["antiderivative"] = in.Antiderivative
	}
	if in.Definite {
		f["lower"] = in.Lower
		f["upper"] = in.Upper
		f["method"] = string(in.Method)
		f["intervals"] = in.Intervals
		f["result"] = in.Result()
		f["numeric"] = in.Value
	} else {
		f["result"] = in.Antiderivative + " + C"
	}
	return f
}

func (o IntegralOptions) normalized() IntegralOptions {
	o.Method = ParseMethod(string(o.Method))
	if o.Intervals <= 0 {
		o.Intervals = DefaultIntervals
	}
	if o.Method == Simpson && o.Intervals%2 == 1 {
		o.Intervals++
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

func checkVariable(variable string) error {
	if variable == "" {
		return errAt(KindSyntax, -1, "missing integration variable")
	}
	if IsReserved(variable) {
		return errAt(KindSyntax, -1, "%q is reserved and cannot be the integration variable", variable)
	}
	return nil
}

// Integrate computes the definite integral of expr over [lower, upper].
// The numeric estimate is always computed; a symbolic antiderivative is
// reported alongside when the integrand is in the supported forms.
func Integrate(expr, variable string, lower, upper float64, opts IntegralOptions) (Integral, error) {
	if err := checkVariable(variable); err != nil {
		return Integral{}, err
	}
	n, err := Parse(expr)
	if err != nil {
		return Integral{}, err
	}
	opts = opts.normalized()
	ev := opts.evaluator(false)
	f := integrand(ev, n, variable)

	value, err := quadrature(f, lower, upper, opts)
	if err != nil {
		return Integral{}, err
	}
	if _, err := finite(value, -1); err != nil {
		return Integral{}, errAt(KindOverflow, -1, "∫ %s d%s over [%s, %s] is too large",
			n, variable, Format(lower, 10), Format(upper, 10))
	}

	in := Integral{
		Expression: strings.TrimSpace(expr),
		Variable:   variable,
		Definite:   true,
		Lower:      lower,
		Upper:      upper,
		Method:     opts.Method,
		Intervals:  opts.Intervals,
		Value:      Round(value, ev.precision),
	}
	bounds := fmt.Sprintf("[%s, %s]", ev.show(lower), ev.show(upper))
	integral := fmt.Sprintf("∫%s %s d%s", bounds, n, variable)

	s := newSymbolic(variable, opts.Options)
	if F, ok := s.integrate(n); ok {
		// The grid can step over a pole; F(b) - F(a) across one is meaningless.
		lo, hi := math.Min(lower, upper), math.Max(lower, upper)
		for _, p := range s.poles {
			if p >= lo && p <= hi {
				return Integral{}, fmt.Errorf("%w: %s is unbounded at %s = %s",
					ErrNotIntegrable, n, variable, Format(p, 10))
			}
		}
		in.Antiderivative = F.String()
		in.Steps = append(in.Steps, s.steps...)
		in.Steps = append(in.Steps, fmt.Sprintf("∫ %s d%s = %s + C", n, variable, in.Antiderivative))
		fb, errB := integrand(ev, F, variable)(upper)
		fa, errA := integrand(ev, F, variable)(lower)
		if errA == nil && errB == nil && !math.IsInf(fb-fa, 0) && !math.IsNaN(fb-fa) {
			in.Exact = Round(fb-fa, ev.precision)
			in.HasExact = true
			in.Steps = append(in.Steps, fmt.Sprintf("F(%s) - F(%s) = %s - %s = %s",
				ev.show(upper), ev.show(lower), ev.show(fb), ev.show(fa), ev.show(in.Exact)))
		}
	}
	in.Steps = append(in.Steps, numericStep(opts, lower, upper))
	in.Steps = append(in.Steps, fmt.Sprintf("%s ≈ %s", integral, ev.show(in.Value)))
	in.Display = ev.show(in.Result())
	in.Steps = append(in.Steps, "Result: "+in.Display)
	return in, nil
}

// IntegrateIndefinite finds an antiderivative of expr or fails with
// ErrNoAntiderivative.
func IntegrateIndefinite(expr, variable string, opts IntegralOptions) (Integral, error) {
	if err := checkVariable(variable); err != nil {
		return Integral{}, err
	}
	n, err := Parse(expr)
	if err != nil {
		return Integral{}, err
	}
	opts = opts.normalized()
	F, rules, ok := Antiderivative(n, variable, opts.Options)
	if !ok {
		return Integral{}, fmt.Errorf("%w: ∫ %s d%s", ErrNoAntiderivative, n, variable)
	}
	in := Integral{
		Expression:     strings.TrimSpace(expr),
		Variable:       variable,
		Antiderivative: F.String(),
		Method:         opts.Method,
	}
	in.Display = in.Antiderivative + " + C"
	in.Steps = append(rules, fmt.Sprintf("∫ %s d%s = %s", n, variable, in.Display))
	return in, nil
}

func numericStep(opts IntegralOptions, a, b float64) string {
	if opts.Method == Adaptive {
		return fmt.Sprintf("%s with tolerance %g", opts.Method.label(), opts.Tolerance)
	}
	h := (b - a) / float64(opts.Intervals)
	return fmt.Sprintf("%s with n = %d intervals, h = %s", opts.Method.label(), opts.Intervals, Format(h, 6))
}

type fn func(x float64) (float64, error)

// integrand binds variable in n. Any evaluation failure or non-finite value
// becomes ErrNotIntegrable.
func integrand(ev *evaluator, n Node, variable string) fn {
	return func(x float64) (float64, error) {
		ev.vars[variable] = x
		v, err := ev.eval(n)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = errAt(KindDomain, -1, "non-finite value")
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %s = %s: %w", ErrNotIntegrable, variable, Format(x, 10), err)
		}
		return v, nil
	}
}

func quadrature(f fn, a, b float64, o IntegralOptions) (float64, error) {
	if a == b {
		return 0, nil
	}
	switch o.Method {
	case Trapezoid:
		return trapezoid(f, a, b, o.Intervals)
	case Midpoint:
		return midpoint(f, a, b, o.Intervals)
	case Adaptive:
		return adaptive(f, a, b, o.Tolerance)
	default:
		return simpson(f, a, b, o.Intervals)
	}
}

func trapezoid(f fn, a, b float64, n int) (float64, error) {
	h := (b - a) / float64(n)
	sum := 0.0
	for i := 0; i <= n; i++ {
		y, err := f(a + float64(i)*h)
		if err != nil {
			return 0, err
		}
		if i == 0 || i == n {
			y /= 2
		}
		sum += y
	}
	return sum * h, nil
}

func midpoint(f fn, a, b float64, n int) (float64, error) {
	h := (b - a) / float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		y, err := f(a + (float64(i)+0.5)*h)
		if err != nil {
			return 0, err
		}
		sum += y
	}
	return sum * h, nil
}

func simpson(f fn, a, b float64, n int) (float64, error) {
	if n%2 == 1 {
		n++
	}
	h := (b - a) / float64(n)
	sum := 0.0
	for i := 0; i <= n; i++ {
		y, err := f(a + float64(i)*h)
		if err != nil {
			return 0, err
		}
		switch {
		case i == 0 || i == n:
		case i%2 == 1:
			y *= 4
		default:
			y *= 2
		}
		sum += y
	}
	return sum * h / 3, nil
}

var errTooDeep = errors.New("adaptive quadrature did not converge")

func adaptive(f fn, a, b, tol float64) (float64, error) {
	fa, err := f(a)
	if err != nil {
		return 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, err
	}
	m := (a + b) / 2
	fm, err := f(m)
	if err != nil {
		return 0, err
	}
	whole := (b - a) / 6 * (fa + 4*fm + fb)
	v, err := adaptiveStep(f, a, b, fa, fm, fb, whole, tol, maxAdaptiveDepth)
	if errors.Is(err, errTooDeep) {
		return 0, fmt.Errorf("%w: %w", ErrNotIntegrable, err)
	}
	return v, err
}

func adaptiveStep(f fn, a, b, fa, fm, fb, whole, tol float64, depth int) (float64, error) {
	m := (a + b) / 2
	lm, rm := (a+m)/2, (m+b)/2
	flm, err := f(lm)
	if err != nil {
		return 0, err
	}
	frm, err := f(rm)
	if err != nil {
		return 0, err
	}
	left := (m - a) / 6 * (fa + 4*flm + fm)
	right := (b - m) / 6 * (fm + 4*frm + fb)
	delta := left + right - whole
	if math.Abs(delta) <= 15*tol {
		return left + right + delta/15, nil
	}
	if depth <= 0 {
		return 0, errTooDeep
	}
	l, err := adaptiveStep(f, a, m, fa, flm, fm, left, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	r, err := adaptiveStep(f, m, b, fm, frm, fb, right, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	return l + r, nil
}

// Point is one plot sample.
type Point struct{ X, Y float64 }

// Sample evaluates expr at n+1 evenly spaced points over [a, b]. Points where
// the expression is undefined are skipped.
func Sample(expr, variable string, a, b float64, n int, opts Options) ([]Point, error) {
	node, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 100
	}
	f := integrand(opts.evaluator(false), node, variable)
	pts := make([]Point, 0, n+1)
	h := (b - a) / float64(n)
	for i := 0; i <= n; i++ {
		x := a + float64(i)*h
		y, err := f(x)
		if err != nil {
			continue
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}
