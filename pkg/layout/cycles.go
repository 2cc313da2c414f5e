package layout

import "github.com/creditdesk/lineageflow/pkg/lineage"

// BreakCycles returns the edges of a graph minus its depth-first back edges
// and minus every edge with an endpoint that names no node. The result is
// acyclic. It also returns how many edges were dropped.
//
// The search starts from the roots in input order, then from every node not
// yet visited, and follows edges in input order, so the choice of back edges
// is deterministic. Self-loops are always back edges.
//
// The input slice is not modified.
func BreakCycles(nodes []lineage.Node, edges []lineage.Edge) ([]lineage.Edge, int) {
	const (
		white = iota
		gray
		black
	)

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	inDegree := make(map[string]int, len(nodes))
	children := make(map[string][]int, len(nodes))
	for i, e := range edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		children[e.Source] = append(children[e.Source], i)
		inDegree[e.Target]++
	}

	color := make(map[string]int, len(nodes))
	back := make(map[int]bool)

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, i := range children[id] {
			child := edges[i].Target
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back[i] = true
			}
		}
		color[id] = black
	}

	for _, n := range nodes {
		if inDegree[n.ID] == 0 && color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range nodes {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	kept := make([]lineage.Edge, 0, len(edges))
	for i, e := range edges {
		if back[i] || !known[e.Source] || !known[e.Target] {
			continue
		}
		kept = append(kept, e)
	}
	return kept, len(edges) - len(kept)
}
