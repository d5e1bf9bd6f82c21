package sticker

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// FaceSource holds the parsed embedded bold font. The parsed *opentype.Font
// is safe for concurrent use; font.Face is not, so faces are never shared:
// each render takes its own faceSet.
type FaceSource struct {
	font *opentype.Font
}

func NewFaceSource() (*FaceSource, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &FaceSource{font: f}, nil
}

// NewSet creates a face cache owned by a single render. The solver tries
// dozens of sizes per render, so faces are cached per integer size, but only
// within the one goroutine that owns the set.
func (fs *FaceSource) NewSet() *faceSet {
	return &faceSet{
		source: fs,
		faces:  make(map[int]font.Face),
	}
}

// faceSet hands out font.Face instances of the embedded bold face, cached per
// integer size. A faceSet must not be used from more than one goroutine.
type faceSet struct {
	source *FaceSource
	faces  map[int]font.Face
}

func (s *faceSet) Face(size int) (font.Face, error) {
	if size < 1 {
		size = 1
	}

	if face, ok := s.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(s.source.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face at %dpt: %w", size, err)
	}
	s.faces[size] = face
	return face, nil
}

// Measure is the production Measurer: text runs are measured with the face,
// glyph runs advance by the fixed emoji advance so the solver accounts for
// inline emoji the same way the renderer will.
func (s *faceSet) Measure(text string, fontSize float64) float64 {
	face, err := s.Face(int(fontSize))
	if err != nil {
		// Degenerate estimate; only reachable if face creation fails.
		return 0.6 * fontSize * float64(len([]rune(text)))
	}

	var total float64
	for _, run := range Segment(text) {
		if run.Kind == RunGlyph {
			total += glyphAdvance * glyphScale * fontSize
			continue
		}
		total += fixedToFloat(font.MeasureString(face, run.Text))
	}
	return total
}
