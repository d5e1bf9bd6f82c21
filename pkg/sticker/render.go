package sticker

import (
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GlyphSource resolves one emoji sequence to a raster-ready image.
type GlyphSource interface {
	Fetch(seq string) (image.Image, error)
}

const (
	// glyphScale is the emoji box relative to the font size.
	glyphScale = 0.9
	// glyphAdvance is the cursor advance relative to the emoji box.
	glyphAdvance = 0.8
	// glyphRise lifts the emoji box above the text baseline so it sits on
	// the visual center of the surrounding text.
	glyphRise = 0.7

	placeholderGlyph = "□"
)

// renderLine draws one line of mixed text/emoji content left to right,
// starting the text baseline at (x, y), and returns the final cursor X.
// Segments are drawn strictly in order: the cursor carries from one segment
// to the next, so each glyph fetch completes before the following segment.
// A failed fetch is replaced with a placeholder box and the line continues.
func renderLine(dc *gg.Context, face font.Face, glyphs GlyphSource, line string, x, y, fontSize float64) float64 {
	dc.SetFontFace(face)
	cursor := x

	for _, run := range Segment(line) {
		if run.Kind == RunText {
			dc.DrawString(run.Text, cursor, y)
			cursor += fixedToFloat(font.MeasureString(face, run.Text))
			continue
		}

		img, err := glyphs.Fetch(run.Text)
		if err != nil {
			log.Printf("Glyph fetch failed for %q: %v", run.Text, err)
			dc.DrawString(placeholderGlyph, cursor, y)
			cursor += glyphAdvance * fontSize
			continue
		}

		box := int(glyphScale * fontSize)
		if box < 1 {
			box = 1
		}
		scaled := imaging.Resize(img, box, box, imaging.Lanczos)
		dc.DrawImage(scaled, int(cursor), int(y-glyphRise*fontSize))
		cursor += glyphAdvance * float64(box)
	}
	return cursor
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
