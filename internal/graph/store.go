package graph

import (
	"context"
	"errors"
	"maps"
)

// ErrNodeNotFound is returned when an edge references a node that was never
// merged.
var ErrNodeNotFound = errors.New("graph node not found")

// Props are node properties. Values are strings, ints, floats or bools.
type Props map[string]any

// Store persists nodes and edges.
//
// MergeNode creates the node when absent and otherwise overlays props on
// the stored properties; keys missing from props keep their stored value.
// It returns the properties after the merge. Link records an edge once;
// linking the same pair again is a no-op.
type Store interface {
	MergeNode(ctx context.Context, label Label, key string, props Props) (Props, error)
	Link(ctx context.Context, from Ref, rel Relation, to Ref) error
}

func (p Props) clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}
