// Package pkg provides the core libraries for lineageflow, a layout engine
// for data lineage graphs.
//
// # Overview
//
// lineageflow places the nodes of a lineage graph (datasets, operations,
// endpoints, services, repositories) on a left-to-right grid: every node gets
// a layer, which fixes its x coordinate, and a slot within the layer, which
// fixes its y coordinate. The pkg directory is organized into four areas:
//
//  1. Domain: [lineage] (graph types, validation, JSON), [events] (lineage
//     events to graphs) and [layout] (the layering engine)
//  2. Output: [render], [render/dot] and [render/echarts]
//  3. Infrastructure: [cache], [client], [httputil], [observability],
//     [errors] and [buildinfo]
//  4. Orchestration: [pipeline] (fetch → layout → render) and [server]
//
// # Architecture
//
// The typical data flow:
//
//	lineage service / graph JSON / exported events
//	         ↓
//	    [client] or [events] package (build a lineage.Graph)
//	         ↓
//	    [lineage] package (validate at the boundary)
//	         ↓
//	    [layout] package (layers, then slots)
//	         ↓
//	    [render] packages (JSON, SVG, PNG, PDF, HTML, DOT)
//
// # Quick Start
//
// Lay out a graph and render it:
//
//	import (
//	    "github.com/creditdesk/lineageflow/pkg/layout"
//	    "github.com/creditdesk/lineageflow/pkg/lineage"
//	    "github.com/creditdesk/lineageflow/pkg/render/dot"
//	)
//
//	g, _ := lineage.ReadGraphFile("graph.json")
//	if err := lineage.Validate(g, lineage.DefaultMaxNodes); err != nil {
//	    return err
//	}
//	pg := layout.Compute(g, layout.DefaultConfig())
//	svg, _ := dot.RenderSVG(ctx, dot.ToDOT(pg, dot.Options{}))
//
// [pipeline.Runner] wraps the same steps with caching, logging and
// observability hooks; the CLI and the HTTP server both go through it.
package pkg
