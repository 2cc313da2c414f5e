package dot_test

import (
	"context"
	"fmt"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/render/dot"
)

func ExampleToDOT() {
	g := lineage.Graph{
		Nodes: []lineage.Node{
			{ID: "a", Type: lineage.NodeTypeOperation},
			{ID: "b", Type: lineage.NodeTypeOperation},
		},
		Edges: []lineage.Edge{{Source: "a", Target: "b"}},
	}
	pg := layout.Compute(g, layout.DefaultConfig())

	src := dot.ToDOT(pg, dot.Options{})
	fmt.Println(len(src) > 0)
	// Output:
	// true
}

func ExampleRenderSVG() {
	g := lineage.Graph{
		Nodes: []lineage.Node{
			{ID: "endpoint:/api/trades", Label: "POST /api/trades", Type: lineage.NodeTypeEndpoint},
			{ID: "cds_trades", Label: "Cds Trades", Type: lineage.NodeTypeDataset},
		},
		Edges: []lineage.Edge{{Source: "endpoint:/api/trades", Target: "cds_trades", Label: "FLOWS_TO"}},
	}
	pg := layout.Compute(g, layout.DefaultConfig())

	svg, err := dot.RenderSVG(context.Background(), dot.ToDOT(pg, dot.Options{Title: "cds_trades"}))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Generated SVG (%d bytes)\n", len(svg))
	// Output varies with the embedded Graphviz version
}
