package addr_test

import (
	"fmt"

	"github.com/matzehuels/flowprof/pkg/addr"
)

func ExampleParse() {
	a, err := addr.Parse("[0, 8, 10]")
	if err != nil {
		panic(err)
	}
	fmt.Println(a)
	fmt.Println(a.Key())
	// Output:
	// [0, 8, 10]
	// 0.8.10
}

func ExampleSort() {
	addrs := []addr.Addr{addr.New(2), addr.New(1, 5), addr.New(1)}
	addr.Sort(addrs)
	fmt.Println(addrs)
	// Output:
	// [[1] [1, 5] [2]]
}
