package calc

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	KindSyntax ErrorKind = iota + 1
	KindDivByZero
	KindDomain
	KindUnknownIdent
	KindArity
	KindOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindDivByZero:
		return "division by zero"
	case KindDomain:
		return "domain error"
	case KindUnknownIdent:
		return "unknown identifier"
	case KindArity:
		return "wrong number of arguments"
	case KindOverflow:
		return "overflow"
	default:
		return "error"
	}
}

// Error is returned for every parse and evaluation failure.
type Error struct {
	Kind    ErrorKind
	Pos     int // byte offset into the expression, -1 when unknown
	Msg     string
	Suggest string
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Pos >= 0 {
		s += fmt.Sprintf(" at %d", e.Pos+1)
	}
	if e.Suggest != "" {
		s += fmt.Sprintf(" (did you mean %q?)", e.Suggest)
	}
	return s
}

// Is lets errors.Is match on kind alone: errors.Is(err, &Error{Kind: KindDomain}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}

// IsKind reports whether err is a *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

var (
	ErrNotIntegrable    = errors.New("integrand is not finite on the interval")
	ErrNoAntiderivative = errors.New("no antiderivative in the supported forms")
)

func errAt(kind ErrorKind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// suggest returns the closest candidate within two edits, or "".
func suggest(name string, candidates []string) string {
	best, bestD := "", 3
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestD && d < len(name) {
			best, bestD = c, d
		}
	}
	return best
}
