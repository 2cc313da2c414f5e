package layout

import (
	"slices"

	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// AssignLayers groups node ids into ordered columns.
//
// # Algorithm
//
//  1. Count, for every known node, the edges that target it. Edges from
//     unknown ids count too; edges to unknown ids are ignored.
//  2. Column 0 is every node with in-degree 0, in input order.
//  3. For each node of the current column and each outgoing edge to a known
//     node, decrement that node's in-degree. A node whose in-degree reaches
//     exactly zero joins the next column once. The next column is sorted by
//     input index.
//  4. Nodes never placed are appended, in input order, to the last column,
//     or form column 0 when no column was produced.
//
// Duplicate ids are layered once, at their first occurrence. Empty input
// yields no columns.
//
// Time complexity is O(V + E log V) in the worst case because of the
// per-column sort; for typical lineage graphs it is effectively O(V + E).
func AssignLayers(nodes []lineage.Node, edges []lineage.Edge) [][]string {
	if len(nodes) == 0 {
		return nil
	}

	index := make(map[string]int, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = len(ids)
		ids = append(ids, n.ID)
	}

	inDegree := make(map[string]int, len(ids))
	children := make(map[string][]string, len(ids))
	for _, e := range edges {
		if _, ok := index[e.Target]; !ok {
			continue
		}
		inDegree[e.Target]++
		if _, ok := index[e.Source]; ok {
			children[e.Source] = append(children[e.Source], e.Target)
		}
	}

	placed := make(map[string]bool, len(ids))
	var frontier []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			frontier = append(frontier, id)
			placed[id] = true
		}
	}

	byIndex := func(a, b string) int { return index[a] - index[b] }

	var layers [][]string
	for len(frontier) > 0 {
		layers = append(layers, frontier)

		var next []string
		for _, id := range frontier {
			for _, child := range children[id] {
				inDegree[child]--
				if inDegree[child] == 0 && !placed[child] {
					placed[child] = true
					next = append(next, child)
				}
			}
		}
		slices.SortFunc(next, byIndex)
		frontier = next
	}

	var remainder []string
	for _, id := range ids {
		if !placed[id] {
			remainder = append(remainder, id)
		}
	}
	if len(remainder) > 0 {
		if len(layers) == 0 {
			layers = append(layers, remainder)
		} else {
			last := len(layers) - 1
			layers[last] = append(layers[last], remainder...)
		}
	}

	return layers
}
