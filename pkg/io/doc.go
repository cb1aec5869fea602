// Package io imports and exports topology graphs as plain JSON.
//
// The format lets the layout run on graphs that did not come from a
// profile, and lets other tools consume the graph of a report:
//
//	{
//	  "nodes": [
//	    {"id": "1", "label": "scan orders", "weight": 12.5},
//	    {"id": "2", "label": "join"}
//	  ],
//	  "edges": [
//	    {"from": "1", "to": "2"}
//	  ]
//	}
//
// Only id is required on a node. weight is the self time in milliseconds
// that colours the box; row is informational and is recomputed by the
// layout. Edges must reference declared nodes. Cycles and self-loops are
// accepted, matching what the layout tolerates.
//
// [WriteJSON] followed by [ReadJSON] reproduces the graph exactly, with
// nodes and edges in their original order.
package io
