// Package fonts measures label text for box sizing.
//
// Text is measured with the Go Regular typeface, which ships with
// golang.org/x/image, so widths are the same on every machine and need no
// system fonts. Faces are parsed once and cached per size. Browsers render
// the labels with [FontFamily]; Go Regular has comparable metrics, which is
// close enough for wrapping and sizing.
package fonts

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family used for node labels.
const FontFamily = `system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif`

// DefaultSize is the label font size in pixels.
const DefaultSize = 12.0

// charWidthRatio approximates the advance of an average glyph relative to
// the font size. It is only used if the embedded font cannot be parsed.
const charWidthRatio = 0.55

var (
	parseOnce sync.Once
	parsed    *opentype.Font
	parseErr  error

	mu    sync.Mutex
	faces = map[float64]font.Face{}
)

// GoRegularTTF returns the TTF data of the measuring font.
func GoRegularTTF() []byte {
	return goregular.TTF
}

// Width returns the advance width of s in pixels at the given size.
// Faces are not safe for concurrent use, so measurement is serialised.
func Width(s string, size float64) float64 {
	if s == "" {
		return 0
	}
	mu.Lock()
	defer mu.Unlock()

	face, err := faceFor(size)
	if err != nil {
		return approxWidth(s, size)
	}
	adv := font.MeasureString(face, s)
	return float64(adv) / 64
}

func faceFor(size float64) (font.Face, error) {
	if f, ok := faces[size]; ok {
		return f, nil
	}
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	faces[size] = f
	return f, nil
}

func approxWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * charWidthRatio
}
