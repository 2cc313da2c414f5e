package layout

import (
	"slices"

	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// Compute lays out g and returns every node with a position, in the caller's
// order, together with the edges of g unchanged.
//
// Compute never fails. Nodes sharing a duplicate id share a position.
func Compute(g lineage.Graph, cfg Config) lineage.PositionedGraph {
	positions := PositionLayers(Layers(g, cfg), cfg)

	nodes := make([]lineage.PositionedNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = lineage.PositionedNode{Node: n, Position: positions[n.ID]}
	}
	return lineage.PositionedGraph{
		Nodes: nodes,
		Edges: slices.Clone(g.Edges),
	}
}

// Layers returns the columns [Compute] would use for g. When
// cfg.ReverseCycles is set, back edges are removed before layering.
func Layers(g lineage.Graph, cfg Config) [][]string {
	edges := g.Edges
	if cfg.ReverseCycles {
		edges, _ = BreakCycles(g.Nodes, g.Edges)
	}
	return AssignLayers(g.Nodes, edges)
}
