package lineage

import (
	"fmt"
	"slices"
)

// NodeType is the semantic kind of a lineage node. The set is closed; use
// [ParseNodeType] to convert untrusted strings.
type NodeType string

const (
	NodeTypeDataset    NodeType = "dataset"
	NodeTypeOperation  NodeType = "operation"
	NodeTypeEndpoint   NodeType = "endpoint"
	NodeTypeService    NodeType = "service"
	NodeTypeRepository NodeType = "repository"
)

// NodeTypes lists every known node type in display order.
var NodeTypes = []NodeType{
	NodeTypeDataset,
	NodeTypeOperation,
	NodeTypeEndpoint,
	NodeTypeService,
	NodeTypeRepository,
}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool { return slices.Contains(NodeTypes, t) }

// ParseNodeType converts s to a NodeType, returning [ErrUnknownNodeType]
// for anything outside the closed set.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
	}
	return t, nil
}

// Metadata is an opaque key/value bag carried through layout unchanged.
type Metadata map[string]any

// Node is a vertex of a lineage graph.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Label    string   `json:"label" bson:"label"`
	Type     NodeType `json:"type" bson:"type"`
	Metadata Metadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed "source feeds target" relation between two node ids.
// Either endpoint may name a node that is absent from the graph.
type Edge struct {
	Source   string   `json:"source" bson:"source"`
	Target   string   `json:"target" bson:"target"`
	Label    string   `json:"label,omitempty" bson:"label,omitempty"`
	Metadata Metadata `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Graph is a lineage graph as returned by the lineage service.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Position is a 2-D coordinate in display units. X grows to the right and
// Y grows downward.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PositionedNode is a Node with an assigned position.
type PositionedNode struct {
	Node     `bson:",inline"`
	Position Position `json:"position" bson:"position"`
}

// PositionedGraph is the output of layout: every input node with a position
// and the input edges unchanged.
type PositionedGraph struct {
	Nodes []PositionedNode `json:"nodes" bson:"nodes"`
	Edges []Edge           `json:"edges" bson:"edges"`
}

// Position returns the position of the node with the given id.
func (pg PositionedGraph) Position(id string) (Position, bool) {
	for _, n := range pg.Nodes {
		if n.ID == id {
			return n.Position, true
		}
	}
	return Position{}, false
}

// Graph strips positions and returns the underlying graph.
func (pg PositionedGraph) Graph() Graph {
	nodes := make([]Node, len(pg.Nodes))
	for i, n := range pg.Nodes {
		nodes[i] = n.Node
	}
	return Graph{Nodes: nodes, Edges: pg.Edges}
}
