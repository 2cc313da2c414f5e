// Package layout assigns 2-D positions to the nodes of a lineage graph.
//
// # Overview
//
// Lineage graphs arrive without coordinates. The engine arranges them as
// left-to-right columns in dependency order:
//
//  1. [AssignLayers] places every node in a column with a Kahn-style
//     topological sweep. Roots form column 0, and a node joins the column
//     after the one in which its last predecessor was placed.
//  2. [PositionLayers] turns the columns into coordinates. Column i sits at
//     x = i*HorizontalSpacing and each column is centered on y = 0.
//
// [Compute] runs both phases and attaches positions to the caller's node
// records without reordering them. Edges are returned unchanged.
//
// # Cycles
//
// Nodes whose in-degree never reaches zero (members of a cycle, anything
// downstream of one, self-loops, targets of edges from unknown ids) go to a
// remainder bucket appended to the last column. This guarantees termination
// and totality at the cost of layout quality on cyclic graphs.
//
// Setting [Config.ReverseCycles] removes depth-first back edges from the
// layering input first, so cycles are laid out across columns instead. The
// returned edge list is unaffected.
//
// # Guarantees
//
// The engine has no error return and never panics. For identical input
// (same node order, same edge order) it produces identical coordinates.
// Running time is linear in nodes plus edges.
//
// # Concurrency
//
// All functions are pure and safe for concurrent use.
package layout
