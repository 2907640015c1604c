package calc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAntiderivativeForms(t *testing.T) {
	cases := map[string]string{
		"5":         "5 * x",
		"x":         "x^2 / 2",
		"x^2":       "x^3 / 3",
		"x^-1":      "ln(abs(x))",
		"1/x":       "ln(abs(x))",
		"e^x":       "e^x",
		"2^x":       "2^x / ln(2)",
		"exp(3x)":   "exp(3 * x) / 3",
		"sin(x)":    "-cos(x)",
		"cos(2x)":   "sin(2 * x) / 2",
		"sqrt(x)":   "x^1.5 / 1.5",
		"x^2 + 1":   "x^3 / 3 + x",
		"-x":        "-(x^2 / 2)",
		"x^2 / 4":   "x^3 / 3 / 4",
		"1 / x^2":   "-x^(-1)",
		"(2x+1)^2":  "(2 * x + 1)^3 / 6",
	}
	for expr, want := range cases {
		n, err := Parse(expr)
		require.NoError(t, err, expr)
		F, steps, ok := Antiderivative(n, "x", Options{})
		require.True(t, ok, expr)
		require.Equal(t, want, F.String(), expr)
		require.NotEmpty(t, steps, expr)
	}
}

// Differentiating the antiderivative numerically must give back the integrand.
func TestAntiderivativeDerivesBack(t *testing.T) {
	exprs := []string{
		"3x^2 + 2", "4 - x", "x^3 - 2x + 1", "1/(2x+1)", "3/x", "e^(2x)",
		"2^x", "exp(-x)", "sin(3x - 1)", "cos(x/2)", "sqrt(4x+1)", "(x-1)^3",
		"x^-2", "pi * x", "-(x^2)", "5 / x^3",
	}
	const h = 1e-5
	for _, expr := range exprs {
		n, err := Parse(expr)
		require.NoError(t, err, expr)
		F, _, ok := Antiderivative(n, "x", Options{})
		require.True(t, ok, expr)

		for _, x := range []float64{0.7, 1.3, 2.2} {
			at := func(node Node, v float64) float64 {
				c, err := EvaluateNode(node, Options{Vars: map[string]float64{"x": v}, Precision: 15})
				require.NoError(t, err, "%s at %g", node, v)
				return c.Result
			}
			deriv := (at(F, x+h) - at(F, x-h)) / (2 * h)
			require.InDelta(t, at(n, x), deriv, 1e-4, "%s: F = %s at x = %g", expr, F, x)
		}
	}
}

func TestAntiderivativeUnsupported(t *testing.T) {
	for _, expr := range []string{"x sin(x)", "sin(x^2)", "x^x", "tan(x)", "ln(x)", "x!", "1/(x^2+1)", "sin(x - x)"} {
		n, err := Parse(expr)
		require.NoError(t, err, expr)
		_, _, ok := Antiderivative(n, "x", Options{})
		require.False(t, ok, expr)
	}
}

func TestAntiderivativeTrigNeedsRadians(t *testing.T) {
	n, err := Parse("sin(x)")
	require.NoError(t, err)
	_, _, ok := Antiderivative(n, "x", Options{Angle: Degrees})
	require.False(t, ok)
}

func TestAntiderivativeStepsOuterFirst(t *testing.T) {
	n, err := Parse("x^2 + 1")
	require.NoError(t, err)
	_, steps, ok := Antiderivative(n, "x", Options{})
	require.True(t, ok)
	require.Len(t, steps, 3)
	require.True(t, strings.HasPrefix(steps[0], "sum rule: ∫ x^2 + 1 dx"))
	require.Equal(t, "power rule: ∫ x^2 dx = x^3 / 3", steps[1])
	require.Equal(t, "constant rule: ∫ 1 dx = x", steps[2])
}

func TestAntiderivativeConstantsFollowOptions(t *testing.T) {
	n, err := Parse("x^ans")
	require.NoError(t, err)
	F, _, ok := Antiderivative(n, "x", Options{Ans: 2})
	require.True(t, ok)
	require.Equal(t, "x^3 / 3", F.String())
	F, _, ok = Antiderivative(n, "x", Options{})
	require.True(t, ok)
	require.Equal(t, "x", F.String(), "ans defaults to 0")

	n, err = Parse("2^(c x)")
	require.NoError(t, err)
	_, _, ok = Antiderivative(n, "x", Options{Vars: map[string]float64{"c": 3}})
	require.True(t, ok)
	_, _, ok = Antiderivative(n, "x", Options{})
	require.False(t, ok, "c is unknown")
}
