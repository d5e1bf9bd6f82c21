package sticker

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

type fakeGlyphSource struct {
	mu    sync.Mutex
	img   image.Image
	err   error
	calls int
	seqs  []string
}

func (f *fakeGlyphSource) Fetch(seq string) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	f.seqs = append(f.seqs, seq)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func solidGlyph(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func newTestFace(t *testing.T, size int) font.Face {
	t.Helper()
	faces, err := NewFaceSource()
	require.NoError(t, err)
	face, err := faces.NewSet().Face(size)
	require.NoError(t, err)
	return face
}

func TestRenderLinePureTextAdvance(t *testing.T) {
	const fontSize = 48.0
	face := newTestFace(t, 48)
	dc := gg.NewContext(512, 512)

	line := "Hello World"
	end := renderLine(dc, face, &fakeGlyphSource{}, line, 10, 100, fontSize)

	want := 10 + fixedToFloat(font.MeasureString(face, line))
	assert.InDelta(t, want, end, 0.01, "cursor advance must equal the measured width")
}

func TestRenderLineGlyphSuccessAdvance(t *testing.T) {
	const fontSize = 50.0
	face := newTestFace(t, 50)
	dc := gg.NewContext(512, 512)

	src := &fakeGlyphSource{img: solidGlyph(72)}
	end := renderLine(dc, face, src, "\U0001F600", 20, 100, fontSize)

	assert.Equal(t, 1, src.calls)
	box := int(glyphScale * fontSize)
	assert.InDelta(t, 20+glyphAdvance*float64(box), end, 0.01)
}

func TestRenderLineGlyphFailureContinues(t *testing.T) {
	const fontSize = 40.0
	face := newTestFace(t, 40)
	dc := gg.NewContext(512, 512)

	src := &fakeGlyphSource{err: errors.New("cdn unreachable")}
	line := "go \U0001F600 go"
	end := renderLine(dc, face, src, line, 0, 100, fontSize)

	assert.Equal(t, 1, src.calls, "failed fetch must not retry")

	want := fixedToFloat(font.MeasureString(face, "go ")) +
		glyphAdvance*fontSize +
		fixedToFloat(font.MeasureString(face, " go"))
	assert.InDelta(t, want, end, 0.01, "trailing text must still advance the cursor")
}

func TestRenderLineGlyphPlacement(t *testing.T) {
	const fontSize = 100.0
	face := newTestFace(t, 100)
	dc := gg.NewContext(512, 512)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	src := &fakeGlyphSource{img: solidGlyph(72)}
	renderLine(dc, face, src, "\U0001F600", 50, 200, fontSize)

	img := dc.Image()
	// Center of the 90px glyph box placed at (50, 130).
	r, g, b, _ := img.At(50+45, 130+45).RGBA()
	assert.True(t, r > 0x8000 && g > 0x8000 && b > 0x8000,
		"glyph pixels should be drawn inside the box (got %v %v %v)", r, g, b)
	// Outside the box, the canvas stays dark.
	r, _, _, _ = img.At(300, 400).RGBA()
	assert.Less(t, r, uint32(0x1000))
}
