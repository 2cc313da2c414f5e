package lineage

import (
	"errors"
	"fmt"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
)

// DefaultMaxNodes bounds the size of a graph accepted by [Validate].
const DefaultMaxNodes = 5000

var (
	ErrEmptyNodeID     = errors.New("node id cannot be empty")
	ErrDuplicateNodeID = errors.New("duplicate node id")
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrTooManyNodes    = errors.New("too many nodes")
)

// Validate checks the shape of g before layout. It rejects empty ids,
// duplicate ids, node types outside [NodeTypes] and graphs with more than
// maxNodes nodes (maxNodes <= 0 means [DefaultMaxNodes]).
//
// Edges whose endpoints are unknown are accepted.
//
// The returned error is a coded *errors.Error wrapping one of the sentinel
// errors above, so both errors.Is(err, ErrDuplicateNodeID) and a code check
// work.
func Validate(g Graph, maxNodes int) error {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	if len(g.Nodes) > maxNodes {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrTooManyNodes,
			"graph has %d nodes (max %d)", len(g.Nodes), maxNodes)
	}

	seen := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrEmptyNodeID,
				"node %d has an empty id", i)
		}
		if first, ok := seen[n.ID]; ok {
			return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrDuplicateNodeID,
				"node id %q appears at index %d and %d", n.ID, first, i)
		}
		seen[n.ID] = i
		if !n.Type.Valid() {
			return apperrors.Wrap(apperrors.ErrCodeInvalidNodeType,
				fmt.Errorf("%w: %q", ErrUnknownNodeType, n.Type),
				"node %q has unknown type %q", n.ID, n.Type)
		}
	}
	return nil
}

// DanglingEdges returns the indices of edges whose source or target does not
// name a node of g. They are not an error; callers use this for reporting.
func DanglingEdges(g Graph) []int {
	known := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = struct{}{}
	}
	var out []int
	for i, e := range g.Edges {
		_, srcOK := known[e.Source]
		_, dstOK := known[e.Target]
		if !srcOK || !dstOK {
			out = append(out, i)
		}
	}
	return out
}
