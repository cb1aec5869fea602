package sink

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/flowprof/pkg/layout"
)

// RenderJSON encodes l with two-space indentation.
func RenderJSON(l layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
