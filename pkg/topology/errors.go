package topology

import (
	"fmt"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
)

// ErrEmptySpec is returned by Build when no bucket holds a node record.
var ErrEmptySpec = flowerrors.New(flowerrors.ErrCodeEmptySpec, "topology spec contains no nodes")

// DuplicateIDError reports two node records sharing an id.
type DuplicateIDError struct {
	ID uint32
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate node id %d", e.ID)
}

// Code returns DUPLICATE_NODE_ID.
func (e *DuplicateIDError) Code() flowerrors.Code { return flowerrors.ErrCodeDuplicateNodeID }

// DanglingChildError reports a reference to a node id that has no record.
// Parent is set when the reference is a declared parent rather than a child.
type DanglingChildError struct {
	Node    uint32
	Missing uint32
	Parent  bool
}

func (e *DanglingChildError) Error() string {
	if e.Parent {
		return fmt.Sprintf("node %d declares missing parent id %d", e.Node, e.Missing)
	}
	return fmt.Sprintf("node %d references missing child id %d", e.Node, e.Missing)
}

// Code returns DANGLING_CHILD.
func (e *DanglingChildError) Code() flowerrors.Code { return flowerrors.ErrCodeDanglingChild }
