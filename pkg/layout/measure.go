package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/flowprof/pkg/fonts"
)

// Measurer returns the rendered width of a line of label text.
type Measurer interface {
	Measure(s string) float64
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(s string) float64

// Measure implements [Measurer].
func (f MeasureFunc) Measure(s string) float64 { return f(s) }

// FontMeasurer measures with the embedded label font at size pixels.
func FontMeasurer(size float64) Measurer {
	return MeasureFunc(func(s string) float64 { return fonts.Width(s, size) })
}

// FixedMeasurer gives every rune the same advance. Useful where exact
// results matter more than realistic ones.
func FixedMeasurer(perRune float64) Measurer {
	return MeasureFunc(func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * perRune
	})
}

// Wrap breaks text into lines at whitespace. Words are added to the current
// line while the joined line measures at most maxWidth; a single word wider
// than maxWidth gets a line of its own and is not split. Empty or blank
// text yields one empty line.
func Wrap(text string, maxWidth float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if m.Measure(next) <= maxWidth {
			cur = next
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	return append(lines, cur)
}

// BoxSize wraps label and returns the box dimensions for it. Width is the
// widest line plus horizontal padding, clamped to [MinWidth, MaxWidth];
// height fits every line plus vertical padding, at least MinHeight.
func (c Config) BoxSize(label string, m Measurer) (w, h float64, lines []string) {
	maxContent := c.MaxWidth - 2*c.PadX
	lines = Wrap(label, maxContent, m)

	var widest float64
	for _, ln := range lines {
		widest = max(widest, m.Measure(ln))
	}
	content := min(maxContent, widest)

	w = max(c.MinWidth, min(c.MaxWidth, content+2*c.PadX))
	h = max(c.MinHeight, float64(len(lines))*c.LineHeight+2*c.PadY)
	return w, h, lines
}
