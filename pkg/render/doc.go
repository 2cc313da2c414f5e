// Package render turns positioned lineage graphs into visual artifacts.
//
// # Overview
//
// The layout engine produces a [lineage.PositionedGraph]; this package and
// its subpackages draw it without moving any node:
//
//   - [dot]: Graphviz DOT with pinned positions, rendered in-process to SVG
//     and PNG
//   - [echarts]: a standalone interactive HTML page (Apache ECharts)
//
// # Formats
//
// [Formats] lists every supported output. [ValidateFormat] rejects anything
// else with an INVALID_FORMAT error, so callers can validate user input
// before doing any work.
//
// # Format Conversion
//
// [ToPDF] converts any SVG to PDF using the external rsvg-convert tool
// (from librsvg). A missing tool is an UNAVAILABLE error:
//
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(pg, dot.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//
// # Styling
//
// Node colors come from [StyleFor] so every renderer draws datasets,
// operations and the request path stages the same way.
//
// [dot]: github.com/creditdesk/lineageflow/pkg/render/dot
// [echarts]: github.com/creditdesk/lineageflow/pkg/render/echarts
package render
