package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// Spec is the declarative topology document. Nodes are spread over several
// buckets; Build flattens them in field order and forgets which bucket a node
// came from.
type Spec struct {
	Input   []RawNode `json:"input,omitempty" yaml:"input,omitempty"`
	Strata  []Stratum `json:"strata,omitempty" yaml:"strata,omitempty"`
	Inspect []RawNode `json:"inspect,omitempty" yaml:"inspect,omitempty"`
}

// Stratum groups the nodes of one evaluation stratum.
type Stratum struct {
	Label   string     `json:"label,omitempty" yaml:"label,omitempty"`
	Enter   []RawNode  `json:"enter,omitempty" yaml:"enter,omitempty"`
	Rules   []RuleSpec `json:"rules,omitempty" yaml:"rules,omitempty"`
	Runtime []RawNode  `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Leave   []RawNode  `json:"leave,omitempty" yaml:"leave,omitempty"`
}

// RuleSpec is one declared rule and the stages that implement it. Root
// names the rule plan's root fingerprint; when empty the first stage is the
// root.
type RuleSpec struct {
	Rule   string    `json:"rule" yaml:"rule"`
	Root   string    `json:"root,omitempty" yaml:"root,omitempty"`
	Stages []RawNode `json:"stages,omitempty" yaml:"stages,omitempty"`
}

// RawNode is a node record as it appears in a bucket.
type RawNode struct {
	ID          uint32        `json:"id" yaml:"id"`
	Label       string        `json:"label" yaml:"label"`
	Children    []uint32      `json:"children,omitempty" yaml:"children,omitempty"`
	Operators   []OperatorRef `json:"operators,omitempty" yaml:"operators,omitempty"`
	Parents     []uint32      `json:"parents,omitempty" yaml:"parents,omitempty"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags,omitempty"`
	Block       string        `json:"block,omitempty" yaml:"block,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
}

// OperatorRef points a node at one operator address.
type OperatorRef struct {
	Addr []uint32 `json:"addr" yaml:"addr"`
}

// Format selects the encoding of a spec document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything other than
// .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a spec document from r.
func Decode(r io.Reader, format Format) (*Spec, error) {
	var spec Spec
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil && err != io.EOF {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidSpec, err, "decode yaml")
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&spec); err != nil {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeInvalidSpec, err, "decode json")
		}
	default:
		return nil, flowerrors.New(flowerrors.ErrCodeUnsupported, "unsupported spec format %q", format)
	}
	return &spec, nil
}

// Parse decodes a spec held in memory.
func Parse(data []byte, format Format) (*Spec, error) {
	return Decode(bytes.NewReader(data), format)
}

// LoadFile reads and decodes the spec at path, choosing the format from the
// extension.
func LoadFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	spec, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// flatten gathers every node record in bucket order: input, then per stratum
// enter, rule stages, runtime and leave, then inspect.
func (s *Spec) flatten() []RawNode {
	var out []RawNode
	out = append(out, s.Input...)
	for _, st := range s.Strata {
		out = append(out, st.Enter...)
		for _, r := range st.Rules {
			out = append(out, r.Stages...)
		}
		out = append(out, st.Runtime...)
		out = append(out, st.Leave...)
	}
	out = append(out, s.Inspect...)
	return out
}

func (s *Spec) rules() []RuleSpec {
	var out []RuleSpec
	for _, st := range s.Strata {
		out = append(out, st.Rules...)
	}
	return out
}
