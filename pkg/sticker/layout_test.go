package sticker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// narrowMeasure gives every rune a width of 0.1em, so "Hello World" spans
// 132px at size 120 and fits one default line.
func narrowMeasure(s string, fontSize float64) float64 {
	return 0.1 * fontSize * float64(len([]rune(s)))
}

func TestSolveHelloWorldDefaults(t *testing.T) {
	sol := Solve("Hello World", narrowMeasure, DefaultOptions)

	assert.Equal(t, 120, sol.FontSize, "largest size should win when everything fits")
	require.Len(t, sol.Lines, 1)
	assert.Equal(t, []string{"Hello", "World"}, sol.Lines[0].Words)
	assert.InDelta(t, 144.0, sol.LineHeight, 0.001)
}

func TestSolveSplitsAtWordBoundary(t *testing.T) {
	opts := DefaultOptions
	opts.CanvasWidth = 100 // usable width 90: "Hello World" (132) no longer fits

	sol := Solve("Hello World", narrowMeasure, opts)

	assert.Equal(t, 120, sol.FontSize)
	require.Len(t, sol.Lines, 2, "packing must split at the word boundary")
	assert.Equal(t, []string{"Hello"}, sol.Lines[0].Words)
	assert.Equal(t, []string{"World"}, sol.Lines[1].Words)
}

func TestSolveHeightConstraint(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	sol := Solve(text, narrowMeasure, DefaultOptions)

	require.NotEmpty(t, sol.Lines)
	if sol.FontSize > DefaultOptions.MinFontSize {
		total := float64(len(sol.Lines)) * sol.LineHeight
		assert.LessOrEqual(t, total, DefaultOptions.usableHeight(),
			"accepted solutions must fit the usable height")
	}
}

func TestSolveWordOrderPreserved(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog again and again and again"
	sol := Solve(text, narrowMeasure, DefaultOptions)

	var got []string
	for _, line := range sol.Lines {
		got = append(got, line.Words...)
	}
	assert.Equal(t, strings.Fields(text), got)
}

func TestSolveOversizedWordForcesMinimum(t *testing.T) {
	// 5000 runes: 500px at the minimum size, wider than usable at every size.
	word := strings.Repeat("a", 5000)

	sol := Solve(word, narrowMeasure, DefaultOptions)

	assert.Equal(t, DefaultOptions.MinFontSize, sol.FontSize)
	require.Len(t, sol.Lines, 1, "the word must not be split")
	assert.Equal(t, []string{word}, sol.Lines[0].Words)
	// Overflow is accepted, not reported: the line is wider than usable.
	assert.Greater(t, narrowMeasure(word, float64(sol.FontSize)), DefaultOptions.usableWidth())
}

func TestSolveEmptyInput(t *testing.T) {
	assert.Empty(t, Solve("", narrowMeasure, DefaultOptions).Lines)
	assert.Empty(t, Solve("   \n\t ", narrowMeasure, DefaultOptions).Lines)
}

func TestSolvePrefersLargerFont(t *testing.T) {
	// Wide words: at 120 each word is 0.1*120*20 = 240px, so two words per
	// line don't fit (240+12+240 > 460.8) but each word alone does.
	text := strings.Repeat("abcdefghijklmnopqrst ", 3)
	sol := Solve(text, narrowMeasure, DefaultOptions)

	assert.Equal(t, 120, sol.FontSize)
	assert.Len(t, sol.Lines, 3)
}
