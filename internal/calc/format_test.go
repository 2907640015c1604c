package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		v    float64
		prec int
		want string
	}{
		{1.0 / 3, 4, "0.3333"},
		{2.5, 10, "2.5"},
		{0.1 + 0.2, 10, "0.3"},
		{-0.0, 10, "0"},
		{1e-12, 10, "1e-12"},
		{1e20, 10, "1e+20"},
		{123456789, 0, "123456789"},
		{math.NaN(), 10, "NaN"},
		{math.Inf(1), 10, "Infinity"},
		{math.Inf(-1), 10, "-Infinity"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Format(tc.v, tc.prec), "%v", tc.v)
	}
}

func TestRound(t *testing.T) {
	require.Equal(t, 5.5, Round(5.45, 1))
	require.Equal(t, -5.5, Round(-5.45, 1))
	require.Equal(t, 0.3, Round(0.1+0.2, 10))
	require.True(t, math.IsInf(Round(math.Inf(1), 3), 1))
	require.Equal(t, 1e20, Round(1e20, 2))
}
