package calc

import (
	"strconv"
	"strings"
)

// Node is a parsed expression.
type Node interface {
	String() string
	prec() int
}

// Num is a numeric literal.
type Num struct{ Value float64 }

// Var is a named constant or variable.
type Var struct {
	Name string
	Pos  int
}

// Unary is negation. Unary plus is dropped by the parser.
type Unary struct {
	Op string
	X  Node
}

// Binary is one of + - * / % ^.
type Binary struct {
	Op   string
	L, R Node
	Pos  int
}

// Call is a function application.
type Call struct {
	Name string
	Args []Node
	Pos  int
}

// Factorial is the postfix ! operator.
type Factorial struct{ X Node }

const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precPostfix
	precAtom
)

func (n Num) prec() int {
	if n.Value < 0 {
		return precNeg
	}
	return precAtom
}
func (Var) prec() int       { return precAtom }
func (Unary) prec() int     { return precNeg }
func (Call) prec() int      { return precAtom }
func (Factorial) prec() int { return precPostfix }

func (b Binary) prec() int {
	switch b.Op {
	case "+", "-":
		return precAdd
	case "^":
		return precPow
	default:
		return precMul
	}
}

func (n Num) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (v Var) String() string { return v.Name }

func (u Unary) String() string {
	return u.Op + wrap(u.X, u.X.prec() < precNeg)
}

func (b Binary) String() string {
	p := b.prec()
	if b.Op == "^" {
		return wrap(b.L, b.L.prec() <= precPow) + "^" + wrap(b.R, b.R.prec() < precPow)
	}
	right := b.R.prec() < p || (b.R.prec() == p && b.Op != "+" && b.Op != "*")
	return wrap(b.L, b.L.prec() < p) + " " + b.Op + " " + wrap(b.R, right)
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func (f Factorial) String() string {
	return wrap(f.X, f.X.prec() < precPostfix) + "!"
}

func wrap(n Node, paren bool) string {
	if paren {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// HasVar reports whether the variable name occurs in n.
func HasVar(n Node, name string) bool {
	switch t := n.(type) {
	case Var:
		return t.Name == name
	case Unary:
		return HasVar(t.X, name)
	case Binary:
		return HasVar(t.L, name) || HasVar(t.R, name)
	case Call:
		for _, a := range t.Args {
			if HasVar(a, name) {
				return true
			}
		}
	case Factorial:
		return HasVar(t.X, name)
	}
	return false
}
