package report

import (
	"bytes"
	"encoding/json"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Marshal encodes r as the report document. Map keys are emitted in sorted
// order and struct fields in declaration order, so equal reports encode to
// identical bytes.
func Marshal(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// MarshalIndent is like Marshal with two-space indentation and a trailing
// newline.
func MarshalIndent(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a report document produced by Marshal. Diagnostics are
// not part of the document and come back empty.
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidInput, err, "decode report")
	}
	return &r, nil
}
