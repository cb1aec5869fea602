package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Config holds the geometry and colour constants of a layout. All lengths
// are in SVG user units (pixels at scale 1).
type Config struct {
	// Node boxes
	PadX       float64 `toml:"pad_x" json:"pad_x"`
	PadY       float64 `toml:"pad_y" json:"pad_y"`
	LineHeight float64 `toml:"line_height" json:"line_height"`
	MinWidth   float64 `toml:"min_width" json:"min_width"`
	MaxWidth   float64 `toml:"max_width" json:"max_width"`
	MinHeight  float64 `toml:"min_height" json:"min_height"`
	FontSize   float64 `toml:"font_size" json:"font_size"`
	// Baseline is the distance from PadY to the first text baseline.
	Baseline float64 `toml:"baseline" json:"baseline"`

	// Page
	LayerGap     float64 `toml:"layer_gap" json:"layer_gap"`
	TopOffset    float64 `toml:"top_offset" json:"top_offset"`
	MinPageWidth float64 `toml:"min_page_width" json:"min_page_width"`
	SlotWidth    float64 `toml:"slot_width" json:"slot_width"`
	BottomMargin float64 `toml:"bottom_margin" json:"bottom_margin"`

	// Colour scale
	ColdColor     Color   `toml:"cold_color" json:"cold_color"`
	HotColor      Color   `toml:"hot_color" json:"hot_color"`
	MinColorScale float64 `toml:"min_color_scale" json:"min_color_scale"`
}

// DefaultConfig returns the standard geometry.
func DefaultConfig() Config {
	return Config{
		PadX:       12,
		PadY:       8,
		LineHeight: 16,
		MinWidth:   140,
		MaxWidth:   360,
		MinHeight:  36,
		FontSize:   12,
		Baseline:   12,

		LayerGap:     120,
		TopOffset:    40,
		MinPageWidth: 960,
		SlotWidth:    220,
		BottomMargin: 80,

		ColdColor:     Color{233, 242, 255},
		HotColor:      Color{91, 141, 239},
		MinColorScale: 0.0001,
	}
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"line_height", c.LineHeight},
		{"min_width", c.MinWidth},
		{"max_width", c.MaxWidth},
		{"font_size", c.FontSize},
		{"layer_gap", c.LayerGap},
		{"slot_width", c.SlotWidth},
		{"min_color_scale", c.MinColorScale},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return flowerrors.New(flowerrors.ErrCodeInvalidInput, "layout %s must be positive, got %v", p.name, p.v)
		}
	}
	if c.PadX < 0 || c.PadY < 0 {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "layout padding must not be negative")
	}
	if c.MinWidth > c.MaxWidth {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "layout min_width %v exceeds max_width %v", c.MinWidth, c.MaxWidth)
	}
	if c.MaxWidth <= 2*c.PadX {
		return flowerrors.New(flowerrors.ErrCodeInvalidInput, "layout max_width %v leaves no room for text", c.MaxWidth)
	}
	return nil
}

// Color is an sRGB colour.
type Color struct {
	R, G, B uint8
}

// String renders c as "rgb(r,g,b)".
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex renders c as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Lerp mixes a towards b by t, rounding each channel. t is clamped to [0, 1].
func Lerp(a, b Color, t float64) Color {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return Color{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B)}
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "rgb(r,g,b)" and "#rrggbb".
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch {
	case strings.HasPrefix(s, "#") && len(s) == 7:
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "bad colour %q", s)
		}
		*c = Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}
		return nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return flowerrors.New(flowerrors.ErrCodeInvalidInput, "bad colour %q", s)
		}
		var ch [3]uint8
		for i, p := range parts {
			v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
			if err != nil {
				return flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "bad colour %q", s)
			}
			ch[i] = uint8(v)
		}
		*c = Color{ch[0], ch[1], ch[2]}
		return nil
	}
	return flowerrors.New(flowerrors.ErrCodeInvalidInput, "bad colour %q", s)
}
