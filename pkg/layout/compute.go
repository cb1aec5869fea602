package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowprof/pkg/dag"
	"github.com/matzehuels/flowprof/pkg/dag/transform"
	"github.com/matzehuels/flowprof/pkg/layout/ordering"
)

// Option configures Compute.
type Option func(*computer)

type computer struct {
	cfg      Config
	measurer Measurer
	orderer  ordering.Orderer
	logger   *log.Logger
}

// WithConfig replaces the default geometry.
func WithConfig(c Config) Option { return func(x *computer) { x.cfg = c } }

// WithMeasurer replaces the font measurer.
func WithMeasurer(m Measurer) Option { return func(x *computer) { x.measurer = m } }

// WithOrderer replaces the barycenter layer ordering.
func WithOrderer(o ordering.Orderer) Option { return func(x *computer) { x.orderer = o } }

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option { return func(x *computer) { x.logger = l } }

func newComputer(opts ...Option) *computer {
	x := &computer{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(x)
	}
	if x.measurer == nil {
		x.measurer = FontMeasurer(x.cfg.FontSize)
	}
	if x.orderer == nil {
		x.orderer = ordering.Barycenter{}
	}
	if x.logger == nil {
		x.logger = log.New(io.Discard)
	}
	return x
}

// Compute lays out in. It never fails; see the package documentation for
// the algorithm.
func Compute(in Input, opts ...Option) Layout {
	x := newComputer(opts...)
	cfg := x.cfg

	g := buildGraph(in, x.logger)
	transform.AssignLayers(g, in.Roots)
	orders := x.orderer.OrderRows(g)
	rows := g.RowIDs()

	maxCount := 1
	for _, r := range rows {
		maxCount = max(maxCount, len(orders[r]))
	}
	width := max(cfg.MinPageWidth, float64(maxCount)*cfg.SlotWidth)
	height := float64(len(rows))*cfg.LayerGap + cfg.BottomMargin

	centers := make(map[string]Point, g.NodeCount())
	layers := make([][]string, 0, len(rows))
	for li, r := range rows {
		list := orders[r]
		step := width / float64(len(list)+1)
		for idx, name := range list {
			centers[name] = Point{
				X: float64(idx+1) * step,
				Y: cfg.TopOffset + float64(li)*cfg.LayerGap,
			}
		}
		layers = append(layers, append([]string{}, list...))
	}

	maxWeight := cfg.MinColorScale
	for _, n := range g.Nodes() {
		maxWeight = max(maxWeight, n.Weight)
	}

	l := Layout{
		Width:      width,
		Height:     height,
		Boxes:      make([]Box, 0, g.NodeCount()),
		Edges:      make([]Edge, 0, g.EdgeCount()),
		Layers:     layers,
		Crossings:  dag.CountCrossings(g, orders),
		Cycles:     transform.Cycles(g),
		LineHeight: cfg.LineHeight,
		TextTop:    cfg.PadY + cfg.Baseline,
		FontSize:   cfg.FontSize,
	}

	index := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		c, ok := centers[n.ID]
		if !ok {
			continue
		}
		w, h, lines := cfg.BoxSize(n.DisplayLabel(), x.measurer)
		index[n.ID] = len(l.Boxes)
		l.Boxes = append(l.Boxes, Box{
			Name:   n.ID,
			Label:  n.DisplayLabel(),
			X:      c.X - w/2,
			Y:      c.Y - h/2,
			Width:  w,
			Height: h,
			Lines:  lines,
			Depth:  n.Row,
			Weight: n.Weight,
			Fill:   Lerp(cfg.ColdColor, cfg.HotColor, n.Weight/maxWeight),
		})
	}

	for _, e := range g.Edges() {
		fi, okF := index[e.From]
		ti, okT := index[e.To]
		if !okF || !okT {
			continue
		}
		l.Edges = append(l.Edges, route(e.From, e.To, l.Boxes[fi], l.Boxes[ti]))
	}

	x.logger.Debug("layout computed",
		"nodes", len(l.Boxes), "edges", len(l.Edges),
		"layers", len(l.Layers), "crossings", l.Crossings)
	if len(l.Cycles) > 0 {
		x.logger.Debug("layout graph has cycles", "components", len(l.Cycles))
	}
	return l
}

// Graph builds the DAG of in with labels and weights set on the nodes.
// Duplicate names and children outside the input are dropped.
func Graph(in Input) *dag.DAG {
	return buildGraph(in, log.New(io.Discard))
}

func buildGraph(in Input, logger *log.Logger) *dag.DAG {
	g := dag.New(nil)
	for _, name := range in.Names {
		n := dag.Node{ID: name, Label: in.Labels[name], Weight: in.Weights[name]}
		if err := g.AddNode(n); err != nil {
			logger.Debug("skipping node", "name", name, "err", err)
		}
	}
	for _, name := range g.IDs() {
		for _, c := range in.Children[name] {
			if err := g.AddEdge(dag.Edge{From: name, To: c}); err != nil {
				logger.Debug("skipping edge", "from", name, "to", c, "err", err)
			}
		}
	}
	return g
}

func route(from, to string, src, dst Box) Edge {
	x1, y1 := src.CenterX(), src.Bottom()
	x2, y2 := dst.CenterX(), dst.Y
	midY := (y1 + y2) / 2
	return Edge{
		From: from,
		To:   to,
		Points: []Point{
			{x1, y1},
			{x1, midY},
			{x2, midY},
			{x2, y2},
		},
	}
}
