package viewport_test

import (
	"fmt"

	"github.com/matzehuels/flowprof/pkg/viewport"
)

func ExampleTransform() {
	v := viewport.Identity().
		Pan(40, 20).
		Zoom(1e9, 0, 0) // zoom out as far as allowed
	fmt.Println(v.Scale)
	fmt.Println(v.SVG())
	// Output:
	// 0.2
	// translate(8 4) scale(0.2)
}
