package calc

import (
	"fmt"
	"math"
)

// Antiderivative finds F with F' = n with respect to variable, or reports
// ok=false when n is outside the supported forms: constants, sums and
// differences, constant multiples, x^k, 1/x, e^x, c^x and exp, sin, cos and
// sqrt of a linear argument. Trigonometric rules only apply in radians. The
// returned steps name each rule used, outermost first. Constant
// subexpressions are evaluated with opts, so ans, user variables and the
// angle unit mean what they mean to the evaluator.
func Antiderivative(n Node, variable string, opts Options) (Node, []string, bool) {
	s := newSymbolic(variable, opts)
	F, ok := s.integrate(n)
	if !ok {
		return nil, nil, false
	}
	return F, s.steps, true
}

type symbolic struct {
	v     string
	ev    *evaluator
	steps []string
	// poles are the values of v where the integrand is unbounded.
	poles []float64
}

func newSymbolic(variable string, opts Options) *symbolic {
	return &symbolic{v: variable, ev: opts.evaluator(false)}
}

func (s *symbolic) rule(name string, n, F Node) {
	s.steps = append(s.steps, fmt.Sprintf("%s: ∫ %s d%s = %s", name, n, s.v, F))
}

func (s *symbolic) integrate(n Node) (Node, bool) {
	if !HasVar(n, s.v) {
		F := mul(n, Var{Name: s.v})
		s.rule("constant rule", n, F)
		return F, true
	}
	switch t := n.(type) {
	case Var:
		F := div(pow(t, Num{Value: 2}), Num{Value: 2})
		s.rule("power rule", n, F)
		return F, true

	case Unary:
		at := len(s.steps)
		G, ok := s.integrate(t.X)
		if !ok {
			return nil, false
		}
		F := neg(G)
		s.insert(at, "negation", n, F)
		return F, true

	case Binary:
		return s.binary(t)

	case Call:
		return s.call(t)
	}
	return nil, false
}

func (s *symbolic) binary(b Binary) (Node, bool) {
	at := len(s.steps)
	switch b.Op {
	case "+", "-":
		L, ok := s.integrate(b.L)
		if !ok {
			return nil, false
		}
		R, ok := s.integrate(b.R)
		if !ok {
			return nil, false
		}
		F := Binary{Op: b.Op, L: L, R: R}
		s.insert(at, "sum rule", b, F)
		return F, true

	case "*":
		c, x := b.L, b.R
		if HasVar(c, s.v) {
			c, x = x, c
		}
		if HasVar(c, s.v) {
			return nil, false
		}
		G, ok := s.integrate(x)
		if !ok {
			return nil, false
		}
		F := mul(c, G)
		s.insert(at, "constant multiple rule", b, F)
		return F, true

	case "/":
		if !HasVar(b.R, s.v) {
			G, ok := s.integrate(b.L)
			if !ok {
				return nil, false
			}
			F := div(G, b.R)
			s.insert(at, "constant multiple rule", b, F)
			return F, true
		}
		if HasVar(b.L, s.v) {
			return nil, false
		}
		// c / g: reciprocal of a linear term, or of a power of the variable
		if a, ok := s.linear(b.R); ok {
			s.pole(b.R)
			F := mul(b.L, scale(Call{Name: "ln", Args: []Node{Call{Name: "abs", Args: []Node{b.R}}}}, a))
			s.rule("reciprocal rule", b, F)
			return F, true
		}
		if p, ok := b.R.(Binary); ok && p.Op == "^" && isVar(p.L, s.v) && !HasVar(p.R, s.v) {
			G, ok := s.integrate(Binary{Op: "^", L: p.L, R: neg(p.R)})
			if !ok {
				return nil, false
			}
			F := mul(b.L, G)
			s.insert(at, "constant multiple rule", b, F)
			return F, true
		}

	case "^":
		return s.power(b)
	}
	return nil, false
}

func (s *symbolic) power(b Binary) (Node, bool) {
	if !HasVar(b.R, s.v) {
		a, ok := s.linear(b.L)
		if !ok {
			return nil, false
		}
		k, ok := s.constant(b.R)
		if !ok {
			return nil, false
		}
		if k < 0 {
			s.pole(b.L)
		}
		if k == -1 {
			F := scale(Call{Name: "ln", Args: []Node{Call{Name: "abs", Args: []Node{b.L}}}}, a)
			s.rule("reciprocal rule", b, F)
			return F, true
		}
		F := scale(pow(b.L, Num{Value: k + 1}), a*(k+1))
		s.rule("power rule", b, F)
		return F, true
	}
	if HasVar(b.L, s.v) {
		return nil, false
	}
	a, ok := s.linear(b.R)
	if !ok {
		return nil, false
	}
	if isVar(b.L, "e") {
		F := scale(b, a)
		s.rule("exponential rule", b, F)
		return F, true
	}
	c, ok := s.constant(b.L)
	if !ok || c <= 0 || c == 1 {
		return nil, false
	}
	var lnc Node = Call{Name: "ln", Args: []Node{b.L}}
	if a != 1 {
		lnc = Binary{Op: "*", L: Num{Value: a}, R: lnc}
	}
	F := Binary{Op: "/", L: b, R: lnc}
	s.rule("exponential rule", b, F)
	return F, true
}

func (s *symbolic) call(c Call) (Node, bool) {
	if len(c.Args) != 1 {
		return nil, false
	}
	arg := c.Args[0]
	a, ok := s.linear(arg)
	if !ok {
		return nil, false
	}
	var F Node
	var name string
	switch c.Name {
	case "exp":
		F, name = scale(c, a), "exponential rule"
	case "sin":
		if s.ev.angle == Degrees {
			return nil, false
		}
		F, name = scale(neg(Call{Name: "cos", Args: c.Args}), a), "sine rule"
	case "cos":
		if s.ev.angle == Degrees {
			return nil, false
		}
		F, name = scale(Call{Name: "sin", Args: c.Args}, a), "cosine rule"
	case "sqrt":
		F, name = scale(pow(arg, Num{Value: 1.5}), a*1.5), "power rule"
	default:
		return nil, false
	}
	s.rule(name, c, F)
	return F, true
}

// insert places a rule before the steps recorded since at, so outer rules
// read first.
func (s *symbolic) insert(at int, name string, n, F Node) {
	line := fmt.Sprintf("%s: ∫ %s d%s = %s", name, n, s.v, F)
	s.steps = append(s.steps[:at], append([]string{line}, s.steps[at:]...)...)
}

// linear returns the slope of n when n is a*v + b with a != 0.
func (s *symbolic) linear(n Node) (float64, bool) {
	a, _, ok := s.affine(n)
	return a, ok
}

// affine returns a and b when n is a*v + b with a != 0.
func (s *symbolic) affine(n Node) (a, b float64, ok bool) {
	if !s.isLinear(n) {
		return 0, 0, false
	}
	defer delete(s.ev.vars, s.v)
	var err error
	s.ev.vars[s.v] = 0
	if b, err = s.ev.eval(n); err != nil {
		return 0, 0, false
	}
	s.ev.vars[s.v] = 1
	ab, err := s.ev.eval(n)
	if err != nil {
		return 0, 0, false
	}
	a = ab - b
	if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
		return 0, 0, false
	}
	return a, b, true
}

// pole records the zero of the linear term n.
func (s *symbolic) pole(n Node) {
	if a, b, ok := s.affine(n); ok {
		s.poles = append(s.poles, -b/a)
	}
}

func (s *symbolic) isLinear(n Node) bool {
	if !HasVar(n, s.v) {
		return true
	}
	switch t := n.(type) {
	case Var:
		return true
	case Unary:
		return s.isLinear(t.X)
	case Binary:
		switch t.Op {
		case "+", "-":
			return s.isLinear(t.L) && s.isLinear(t.R)
		case "*":
			return (!HasVar(t.L, s.v) && s.isLinear(t.R)) || (!HasVar(t.R, s.v) && s.isLinear(t.L))
		case "/":
			return !HasVar(t.R, s.v) && s.isLinear(t.L)
		}
	}
	return false
}

func (s *symbolic) constant(n Node) (float64, bool) {
	v, err := s.ev.eval(n)
	return v, err == nil
}

func isVar(n Node, name string) bool {
	v, ok := n.(Var)
	return ok && v.Name == name
}

func mul(a, b Node) Node {
	if x, ok := a.(Num); ok && x.Value == 1 {
		return b
	}
	if x, ok := b.(Num); ok && x.Value == 1 {
		return a
	}
	return Binary{Op: "*", L: a, R: b}
}

func div(a, b Node) Node {
	if x, ok := b.(Num); ok && x.Value == 1 {
		return a
	}
	return Binary{Op: "/", L: a, R: b}
}

func pow(a, b Node) Node {
	if x, ok := b.(Num); ok && x.Value == 1 {
		return a
	}
	return Binary{Op: "^", L: a, R: b}
}

func neg(n Node) Node {
	switch t := n.(type) {
	case Num:
		return Num{Value: -t.Value}
	case Unary:
		return t.X
	}
	return Unary{Op: "-", X: n}
}

// scale divides F by the chain-rule factor a.
func scale(F Node, a float64) Node {
	if a == 1 {
		return F
	}
	if a == -1 {
		return neg(F)
	}
	return div(F, Num{Value: a})
}
