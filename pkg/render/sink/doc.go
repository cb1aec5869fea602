// Package sink writes a computed [layout.Layout] in output formats.
//
// [RenderSVG] produces the graph drawing: orthogonal edges, one group per
// node with a filled rounded box, the word-wrapped label as tspan lines and
// a tooltip. Every drawable sits in a single viewport group whose transform
// carries the pan and zoom state, so a client only has to rewrite one
// attribute to move the view. [RenderJSON] serialises the layout itself for
// tooling.
//
// Options mirror the interactive surface:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithReport(rep),          // activations in tooltips
//	    sink.WithSelected("12"),       // highlight a node
//	    sink.WithTransform(state.Viewport),
//	    sink.WithStyles(),             // embed CSS for standalone files
//	)
package sink
