// Package echarts renders positioned lineage graphs as interactive HTML.
//
// The page embeds an Apache ECharts graph series with layout "none": nodes
// sit exactly where the layout engine put them, and the viewer can pan,
// zoom and drag. Node colors follow [render.StyleFor] and each node type is
// a legend category that can be toggled.
package echarts

import (
	"bytes"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/render"
)

// ChartID is the fixed DOM id of the chart. A fixed id keeps the output
// byte-identical for identical input, which the artifact cache relies on.
const ChartID = "lineage"

// Options configures the HTML page.
type Options struct {
	Title string

	// NodeWidth and NodeHeight size the node symbols in layout pixels.
	NodeWidth  float64
	NodeHeight float64
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Lineage"
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = 200
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = layout.DefaultNodeHeight
	}
	return o
}

// Chart builds the ECharts graph for pg.
func Chart(pg lineage.PositionedGraph, o Options) *charts.Graph {
	o = o.withDefaults()

	g := charts.NewGraph()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			ChartID:   ChartID,
			Width:     "100vw",
			Height:    "100vh",
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	g.AddSeries("lineage", nodes(pg, o), links(pg),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:         "none",
			Roam:           opts.Bool(true),
			Draggable:      opts.Bool(true),
			EdgeSymbol:     []string{"none", "arrow"},
			EdgeSymbolSize: 8,
			Categories:     categories(),
			LineStyle: &opts.LineStyle{
				Color:     render.EdgeColor,
				Width:     2,
				Curveness: 0.1,
			},
		}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "inside",
		}),
	)
	return g
}

// Render writes the HTML page for pg to w.
func Render(w io.Writer, pg lineage.PositionedGraph, o Options) error {
	return Chart(pg, o).Render(w)
}

// RenderHTML returns the HTML page for pg.
func RenderHTML(pg lineage.PositionedGraph, o Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, pg, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func categories() []*opts.GraphCategory {
	cats := make([]*opts.GraphCategory, len(lineage.NodeTypes))
	for i, t := range lineage.NodeTypes {
		style := render.StyleFor(t)
		cats[i] = &opts.GraphCategory{
			Name:      string(t),
			ItemStyle: &opts.ItemStyle{Color: style.Fill, BorderColor: style.Border},
			Label:     &opts.Label{Show: opts.Bool(true), Color: style.Text},
		}
	}
	return cats
}

// nodes converts positioned nodes to ECharts nodes. ECharts identifies
// nodes by name, so the name is the id and duplicate ids are emitted once.
// The display label goes to the tooltip.
func nodes(pg lineage.PositionedGraph, o Options) []opts.GraphNode {
	out := make([]opts.GraphNode, 0, len(pg.Nodes))
	seen := make(map[string]bool, len(pg.Nodes))
	for _, n := range pg.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true

		style := render.StyleFor(n.Type)
		node := opts.GraphNode{
			Name:       n.ID,
			X:          float32(n.Position.X),
			Y:          float32(n.Position.Y),
			Fixed:      opts.Bool(true),
			Symbol:     "roundRect",
			SymbolSize: []float64{o.NodeWidth, o.NodeHeight},
			ItemStyle: &opts.ItemStyle{
				Color:       style.Fill,
				BorderColor: style.Border,
				BorderWidth: 2,
			},
			Tooltip: &opts.Tooltip{
				Show:      opts.Bool(true),
				Formatter: types.FuncStr(n.DisplayLabel() + " (" + string(n.Type) + ")"),
			},
		}
		if i := slices.Index(lineage.NodeTypes, n.Type); i >= 0 {
			node.Category = i
		}
		out = append(out, node)
	}
	return out
}

func links(pg lineage.PositionedGraph) []opts.GraphLink {
	known := make(map[string]bool, len(pg.Nodes))
	for _, n := range pg.Nodes {
		known[n.ID] = true
	}

	out := make([]opts.GraphLink, 0, len(pg.Edges))
	for _, e := range pg.Edges {
		if !known[e.Source] || !known[e.Target] {
			continue
		}
		link := opts.GraphLink{Source: e.Source, Target: e.Target}
		if e.Label != "" {
			link.Label = &opts.EdgeLabel{Show: opts.Bool(true), Formatter: e.Label}
		}
		out = append(out, link)
	}
	return out
}
