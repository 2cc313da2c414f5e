package layout_test

import (
	"fmt"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

func ExampleCompute() {
	g := lineage.Graph{
		Nodes: []lineage.Node{
			{ID: "dataset-trades", Type: lineage.NodeTypeDataset},
			{ID: "price-1", Type: lineage.NodeTypeOperation},
			{ID: "risk-1", Type: lineage.NodeTypeOperation},
			{ID: "dataset-pnl", Type: lineage.NodeTypeDataset},
		},
		Edges: []lineage.Edge{
			{Source: "dataset-trades", Target: "price-1"},
			{Source: "dataset-trades", Target: "risk-1"},
			{Source: "price-1", Target: "dataset-pnl"},
			{Source: "risk-1", Target: "dataset-pnl"},
		},
	}

	pg := layout.Compute(g, layout.DefaultConfig())
	for _, n := range pg.Nodes {
		fmt.Printf("%-15s x=%v y=%v\n", n.ID, n.Position.X, n.Position.Y)
	}
	// Output:
	// dataset-trades  x=0 y=-90
	// price-1         x=300 y=-180
	// risk-1          x=300 y=0
	// dataset-pnl     x=600 y=-90
}

func ExampleAssignLayers() {
	nodes := []lineage.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []lineage.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "c"},
		{Source: "c", Target: "b"},
	}

	fmt.Println(layout.AssignLayers(nodes, edges))
	// Output:
	// [[a b c]]
}

func ExampleConfig_reverseCycles() {
	g := lineage.Graph{
		Nodes: []lineage.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []lineage.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "b"},
		},
	}

	cfg := layout.DefaultConfig()
	cfg.ReverseCycles = true
	fmt.Println(layout.Layers(g, cfg))
	// Output:
	// [[a] [b] [c]]
}
