package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/render"
)

const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Title is drawn above the graph when set.
	Title string

	// NodeWidth and NodeHeight are the node box size in layout pixels.
	// Zero values use DefaultNodeWidth and layout.DefaultNodeHeight.
	NodeWidth  float64
	NodeHeight float64

	// Detailed adds node metadata to the labels.
	Detailed bool
}

// DefaultNodeWidth leaves a third of the default horizontal spacing free for
// edges between layers.
const DefaultNodeWidth = 200.0

func (o Options) withDefaults() Options {
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = layout.DefaultNodeHeight
	}
	return o
}

// ToDOT converts a positioned graph to Graphviz DOT. Nodes keep their
// layout positions. Duplicate node ids are written once and edges whose
// endpoints are not nodes of the graph are skipped.
func ToDOT(pg lineage.PositionedGraph, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph lineage {\n")
	buf.WriteString("  graph [bgcolor=\"white\", splines=true, overlap=true, outputorder=edgesfirst, inputscale=72")
	if opts.Title != "" {
		fmt.Fprintf(&buf, ", label=%q, labelloc=t, fontname=\"Helvetica\", fontsize=20", opts.Title)
	}
	buf.WriteString("];\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fixedsize=true, width=%s, height=%s, fontname=\"Helvetica\", fontsize=12, penwidth=2];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight))
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2, arrowhead=normal, fontname=\"Helvetica\", fontsize=10, fontcolor=\"#3C4B61\"];\n", render.EdgeColor)
	buf.WriteString("\n")

	seen := make(map[string]bool, len(pg.Nodes))
	for _, n := range pg.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range pg.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n lineage.Node, detailed bool) string {
	label := render.TruncateLabel(n.DisplayLabel(), render.MaxLabelLength)
	if !detailed || len(n.Metadata) == 0 {
		return label
	}

	parts := []string{label}
	for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
		if s, ok := n.Metadata[k].(string); ok && s != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", k, render.TruncateLabel(s, render.MaxLabelLength)))
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n lineage.PositionedNode, detailed bool) []string {
	style := render.StyleFor(n.Type)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n.Node, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(n.Position.X), num(-n.Position.Y)),
		fmt.Sprintf("fillcolor=%q", style.Fill),
		fmt.Sprintf("color=%q", style.Border),
		fmt.Sprintf("fontcolor=%q", style.Text),
		fmt.Sprintf("tooltip=%q", n.ID),
	}
	if n.Type == lineage.NodeTypeDataset {
		attrs = append(attrs, "shape=cylinder", "style=filled")
	}
	return attrs
}

func num(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// RenderSVG renders DOT source to SVG. Pinned positions are honored.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderFormat(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

// RenderPDF renders DOT source as PDF via SVG conversion with
// [render.ToPDF], which needs rsvg-convert on PATH.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so the drawing scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
