// Package viewport holds the pan and zoom transform of the graph view.
//
// A [Transform] maps layout coordinates to screen coordinates as
// translate(TX, TY) followed by scale(Scale). It is a plain value: every
// operation returns a new Transform and the receiver is never modified.
package viewport

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// MinScale and MaxScale bound the zoom factor.
	MinScale = 0.2
	MaxScale = 4.0

	// WheelSensitivity converts wheel delta units to a zoom exponent.
	WheelSensitivity = 0.001
)

// Transform is a pan/zoom state.
type Transform struct {
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
	Scale float64 `json:"scale"`
}

// Identity returns the untransformed view.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Pan moves the view by a screen-space drag of (dx, dy). The delta is
// divided by the scale so the content follows the pointer at any zoom.
func (t Transform) Pan(dx, dy float64) Transform {
	s := t.scale()
	t.TX += dx / s
	t.TY += dy / s
	return t
}

// Zoom applies a wheel event with vertical delta deltaY at cursor position
// (cx, cy). Negative deltas zoom in. The scale is clamped to
// [MinScale, MaxScale]; if clamping leaves it unchanged, t is returned as is.
// Otherwise the translation is adjusted so the cursor stays anchored.
func (t Transform) Zoom(deltaY, cx, cy float64) Transform {
	old := t.scale()
	next := clamp(old*math.Exp(-deltaY*WheelSensitivity), MinScale, MaxScale)
	if next == old {
		return t
	}
	k := next / old
	t.TX += (cx - t.TX) * (1 - k)
	t.TY += (cy - t.TY) * (1 - k)
	t.Scale = next
	return t
}

// Reset returns the identity transform.
func (t Transform) Reset() Transform { return Identity() }

// SVG renders t as an SVG transform attribute value.
func (t Transform) SVG() string {
	return fmt.Sprintf("translate(%s %s) scale(%s)", num(t.TX), num(t.TY), num(t.scale()))
}

// Apply maps a layout point to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	s := t.scale()
	return t.TX + x*s, t.TY + y*s
}

// scale treats the zero value as scale 1.
func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
