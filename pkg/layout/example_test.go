package layout_test

import (
	"fmt"

	"github.com/matzehuels/flowprof/pkg/layout"
)

func ExampleCompute() {
	in := layout.Input{
		Names: []string{"scan", "filter", "join"},
		Children: map[string][]string{
			"scan":   {"filter", "join"},
			"filter": {"join"},
		},
		Weights: map[string]float64{"scan": 1, "filter": 4, "join": 2},
	}
	l := layout.Compute(in, layout.WithMeasurer(layout.FixedMeasurer(7)))

	for _, b := range l.Boxes {
		fmt.Printf("%s depth=%d fill=%s\n", b.Name, b.Depth, b.Fill)
	}
	fmt.Println(l.Edges[0].Path())
	// Output:
	// scan depth=0 fill=rgb(198,217,251)
	// filter depth=1 fill=rgb(91,141,239)
	// join depth=2 fill=rgb(162,192,247)
	// M 480 58 L 480 100 L 480 100 L 480 142
}

func ExampleWrap() {
	lines := layout.Wrap("hash join on customer key", 100, layout.FixedMeasurer(8))
	fmt.Printf("%q\n", lines)
	// Output:
	// ["hash join on" "customer key"]
}
