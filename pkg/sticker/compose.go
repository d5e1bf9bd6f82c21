package sticker

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// ErrEmptyText is returned when there is nothing to lay out. Callers are
// expected to treat it as a no-op and give their own user feedback.
var ErrEmptyText = errors.New("sticker: empty text")

// DefaultBackground is the solid light fill behind the text.
var DefaultBackground = color.NRGBA{R: 0xF5, G: 0xF5, B: 0xF0, A: 0xFF}

// Composer renders user text into a fixed-size square PNG sticker. It is
// stateless across renders; each call owns its own canvas, so concurrent
// Compose calls need no locking.
type Composer struct {
	faces      *FaceSource
	glyphs     GlyphSource
	opts       Options
	background color.Color
}

func NewComposer(glyphs GlyphSource, opts Options, background color.Color) (*Composer, error) {
	faces, err := NewFaceSource()
	if err != nil {
		return nil, err
	}
	if background == nil {
		background = DefaultBackground
	}
	return &Composer{
		faces:      faces,
		glyphs:     glyphs,
		opts:       opts,
		background: background,
	}, nil
}

// Compose lays out and rasterizes text, returning encoded PNG bytes with
// dimensions exactly CanvasWidth x CanvasHeight. Glyph fetch failures are
// absorbed per line; everything else surfaces as a single wrapped error.
func (c *Composer) Compose(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	// Each render owns its faces: font.Face is not safe for concurrent use,
	// and renders from different messages run in parallel.
	faces := c.faces.NewSet()

	sol := Solve(text, faces.Measure, c.opts)
	if len(sol.Lines) == 0 {
		return nil, ErrEmptyText
	}

	face, err := faces.Face(sol.FontSize)
	if err != nil {
		return nil, fmt.Errorf("render sticker: %w", err)
	}

	dc := gg.NewContext(c.opts.CanvasWidth, c.opts.CanvasHeight)
	dc.SetColor(c.background)
	dc.Clear()

	dc.SetRGB(0, 0, 0)

	marginX := float64(c.opts.CanvasWidth) * c.opts.MarginFrac
	baseline := float64(c.opts.CanvasHeight)*c.opts.MarginFrac + float64(sol.FontSize)

	for _, line := range sol.Lines {
		renderLine(dc, face, c.glyphs, line.Text(), marginX, baseline, float64(sol.FontSize))
		baseline += sol.LineHeight
	}

	img := dc.Image()
	if b := img.Bounds(); b.Dx() != c.opts.CanvasWidth || b.Dy() != c.opts.CanvasHeight {
		img = imaging.Resize(img, c.opts.CanvasWidth, c.opts.CanvasHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("render sticker: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHexColor parses "#rgb" or "#rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
