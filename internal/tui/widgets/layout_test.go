package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

type fixedWidget struct{ text string }

func (w fixedWidget) Render(width, height int) string { return w.text }

func TestHStackRespectsRatios(t *testing.T) {
	h := HStack{Widgets: []Widget{fixedWidget{"A"}, fixedWidget{"B"}}, Ratios: []float64{3, 1}, Gap: 1}
	out := h.Render(21, 1)
	require.Equal(t, "A"+strings.Repeat(" ", 14)+" B    ", out)
}

func TestHStackPadsShorterColumns(t *testing.T) {
	h := HStack{Widgets: []Widget{fixedWidget{"a\nb\nc"}, fixedWidget{"x"}}}
	lines := strings.Split(h.Render(10, 3), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		require.Equal(t, 10, ansi.StringWidth(l))
	}
}

func TestVStackSpacing(t *testing.T) {
	v := VStack{Widgets: []Widget{fixedWidget{"top"}, fixedWidget{"bottom"}}, Spacing: 1}
	require.Equal(t, "top\n\nbottom", v.Render(20, 6))
}

func TestSplitWidths(t *testing.T) {
	require.Equal(t, []int{4, 3, 3}, splitWidths(10, 3, nil))
	require.Equal(t, []int{75, 25}, splitWidths(100, 2, []float64{3, 1}))
	require.Equal(t, []int{5, 5}, splitWidths(10, 2, []float64{0, -1}))
}

func TestTextTruncates(t *testing.T) {
	out := Text("hello world\nsecond\nthird").Render(5, 2)
	require.Equal(t, "hell…\nseco…", out)
}

func TestBoxShowsTitle(t *testing.T) {
	out := Box{Title: "History", Content: "2 + 3 = 5"}.Render(30, 5)
	require.Contains(t, out, "[History]")
	require.Contains(t, out, "2 + 3 = 5")
	require.Empty(t, Box{}.Render(0, 5))
}

func TestPlotNeedsPoints(t *testing.T) {
	require.Contains(t, Plot{}.Render(20, 6), "nothing to plot")
	require.Empty(t, Plot{Points: []Point{{0, 0}, {1, 1}}}.Render(4, 2))
	out := Plot{Points: []Point{{0, 0}, {1, 1}, {2, 4}}}.Render(20, 6)
	require.NotEmpty(t, out)
}

func TestBoundsIncludeZero(t *testing.T) {
	minX, maxX, minY, maxY := bounds([]Point{{1, 2}, {3, 5}})
	require.Equal(t, []float64{1, 3, 0, 5}, []float64{minX, maxX, minY, maxY})
	_, _, minY, maxY = bounds([]Point{{1, 0}, {2, 0}})
	require.Equal(t, 0.0, minY)
	require.Equal(t, 1.0, maxY)
}
