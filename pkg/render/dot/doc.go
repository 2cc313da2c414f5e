// Package dot renders positioned lineage graphs with Graphviz.
//
// # Overview
//
// [ToDOT] writes Graphviz DOT in which every node carries a pinned
// position ("x,y!") taken from the layout engine, so Graphviz only routes
// edges and never moves nodes. [RenderSVG] and [RenderPNG] run the neato
// engine in-process to draw the result.
//
//	dotSrc := dot.ToDOT(pg, dot.Options{Title: "cds_trades"})
//	svg, err := dot.RenderSVG(ctx, dotSrc)
//
// # Coordinates
//
// Layout coordinates are pixels with y growing downwards. Graphviz uses
// points with y growing upwards, so y is negated and the graph attribute
// inputscale=72 makes one layout pixel one point.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly. No system Graphviz installation is needed.
package dot
