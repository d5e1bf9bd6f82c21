package sticker

import "strings"

// Measurer reports the rendered pixel width of s at the given font size.
// The solver is pure over this capability, so it can be tested without a
// rasterizer.
type Measurer func(s string, fontSize float64) float64

// Options are the fixed layout parameters for one render.
type Options struct {
	CanvasWidth   int
	CanvasHeight  int
	MarginFrac    float64
	StartFontSize int
	MinFontSize   int
	FontStep      int
	LineHeightMul float64
}

// DefaultOptions matches the reference deployment: a 512x512 sticker with a
// 5% margin and font sizes tried from 120 down to 10 in steps of 2.
var DefaultOptions = Options{
	CanvasWidth:   512,
	CanvasHeight:  512,
	MarginFrac:    0.05,
	StartFontSize: 120,
	MinFontSize:   10,
	FontStep:      2,
	LineHeightMul: 1.2,
}

// Line is a finalized sequence of words for one rendered line.
type Line struct {
	Words []string
}

func (l Line) Text() string {
	return strings.Join(l.Words, " ")
}

// Solution is the result of the font-size search: the chosen size and the
// lines words were packed into at that size.
type Solution struct {
	FontSize   int
	Lines      []Line
	LineHeight float64
}

func (o Options) usableWidth() float64 {
	return float64(o.CanvasWidth) * (1 - 2*o.MarginFrac)
}

func (o Options) usableHeight() float64 {
	return float64(o.CanvasHeight) * (1 - 2*o.MarginFrac)
}

// Solve searches for the largest font size, descending from StartFontSize by
// FontStep, at which all words of text greedily pack into lines that fit the
// usable canvas. Words are whitespace-delimited and never split; a size at
// which any single word exceeds the usable width is rejected outright. If no
// size down to MinFontSize satisfies the height constraint, the layout is
// forced at MinFontSize and returned even though it overflows the canvas.
// Empty input yields a Solution with no lines.
func Solve(text string, measure Measurer, opts Options) Solution {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Solution{}
	}

	usableW := opts.usableWidth()
	usableH := opts.usableHeight()

	step := opts.FontStep
	if step < 1 {
		step = 1
	}

	for size := opts.StartFontSize; size >= opts.MinFontSize; size -= step {
		lines, ok := packWords(words, measure, float64(size), usableW, false)
		if !ok {
			continue
		}
		lineHeight := float64(size) * opts.LineHeightMul
		if float64(len(lines))*lineHeight <= usableH {
			return Solution{FontSize: size, Lines: lines, LineHeight: lineHeight}
		}
	}

	// Nothing fit: force the layout at the minimum size. Overflow is
	// accepted here, not reported.
	lines, _ := packWords(words, measure, float64(opts.MinFontSize), usableW, true)
	return Solution{
		FontSize:   opts.MinFontSize,
		Lines:      lines,
		LineHeight: float64(opts.MinFontSize) * opts.LineHeightMul,
	}
}

// packWords greedily fills lines left to right, starting a new line whenever
// appending the next word would exceed usableW. When force is false, a single
// word wider than usableW rejects the whole packing (the caller tries a
// smaller size); when force is true the word is placed anyway.
func packWords(words []string, measure Measurer, fontSize, usableW float64, force bool) ([]Line, bool) {
	spaceW := measure(" ", fontSize)

	var lines []Line
	var current []string
	var currentW float64

	for _, word := range words {
		wordW := measure(word, fontSize)
		if !force && wordW > usableW {
			return nil, false
		}
		if len(current) == 0 {
			current = []string{word}
			currentW = wordW
			continue
		}
		if currentW+spaceW+wordW <= usableW {
			current = append(current, word)
			currentW += spaceW + wordW
			continue
		}
		lines = append(lines, Line{Words: current})
		current = []string{word}
		currentW = wordW
	}
	if len(current) > 0 {
		lines = append(lines, Line{Words: current})
	}
	return lines, true
}
