package layout

import (
	"strconv"
	"strings"
)

// Input is the graph to lay out.
type Input struct {
	// Names lists every node. Its order seeds the topological sort.
	Names []string
	// Children holds the DAG children of each node, in declaration order.
	Children map[string][]string
	// Labels are display labels; a missing label falls back to the name.
	Labels map[string]string
	// Weights drive the fill colour, typically self active milliseconds.
	Weights map[string]float64
	// Roots are pinned to depth 0 unless they have parents.
	Roots []string
}

// Point is a position in layout coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a placed node. X and Y are the top-left corner.
type Box struct {
	Name   string   `json:"name"`
	Label  string   `json:"label"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Lines  []string `json:"lines"`
	Depth  int      `json:"depth"`
	Weight float64  `json:"weight"`
	Fill   Color    `json:"fill"`
}

// CenterX returns the horizontal centre of the box.
func (b Box) CenterX() float64 { return b.X + b.Width/2 }

// CenterY returns the vertical centre of the box.
func (b Box) CenterY() float64 { return b.Y + b.Height/2 }

// Bottom returns the y coordinate of the lower edge.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Edge is a routed parent→child connection.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// Path renders the edge as SVG path data: "M x1 y1 L x2 y2 ...".
func (e Edge) Path() string {
	var b strings.Builder
	for i, p := range e.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(FormatNum(p.X))
		b.WriteByte(' ')
		b.WriteString(FormatNum(p.Y))
	}
	return b.String()
}

// Layout is the result of [Compute].
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// Boxes are in input order.
	Boxes []Box  `json:"boxes"`
	Edges []Edge `json:"edges"`
	// Layers lists node names per layer, top to bottom, left to right.
	Layers [][]string `json:"layers"`
	// Crossings counts crossings between adjacent layers.
	Crossings int `json:"crossings"`
	// Cycles lists strongly connected components, if any.
	Cycles [][]string `json:"cycles,omitempty"`

	// Text placement inside a box.
	LineHeight float64 `json:"line_height"`
	TextTop    float64 `json:"text_top"`
	FontSize   float64 `json:"font_size"`
}

// Box returns the box of the named node.
func (l Layout) Box(name string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.Name == name {
			return b, true
		}
	}
	return Box{}, false
}

// Depths returns the depth of every node.
func (l Layout) Depths() map[string]int {
	m := make(map[string]int, len(l.Boxes))
	for _, b := range l.Boxes {
		m[b.Name] = b.Depth
	}
	return m
}

// FormatNum renders v in the shortest form that round-trips, as used in
// SVG attributes.
func FormatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
