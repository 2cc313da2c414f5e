package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
	"github.com/creditdesk/lineageflow/pkg/render"
)

// renderFlags are the layout and output flags shared by commands that
// produce a positioned graph. Flags left unset keep the configured values.
type renderFlags struct {
	output  string
	formats string
	title   string
	noCache bool

	detailed      bool
	reverseCycles bool
	maxNodes      int
	hSpacing      float64
	vSpacing      float64
	nodeHeight    float64
	anchor        string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	d := layout.DefaultConfig()

	// Common flags
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file; with several formats, the base name (default: stdout)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", render.FormatJSON, "output formats, comma-separated: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVar(&f.title, "title", "", "title for rendered outputs")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().Float64Var(&f.hSpacing, "horizontal-spacing", d.HorizontalSpacing, "distance between layers")
	cmd.Flags().Float64Var(&f.vSpacing, "vertical-spacing", d.VerticalSpacing, "gap between nodes in a layer")
	cmd.Flags().Float64Var(&f.nodeHeight, "node-height", d.NodeHeight, "node height")
	cmd.Flags().StringVar(&f.anchor, "anchor", string(d.Anchor), "position anchor: top-left, center")
	cmd.Flags().BoolVar(&f.reverseCycles, "reverse-cycles", false, "drop back edges before layering")
	cmd.Flags().IntVar(&f.maxNodes, "max-nodes", pipeline.DefaultMaxNodes, "reject graphs with more nodes")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "include node metadata in DOT labels")
}

// pipelineOptions starts from the configured defaults and applies the flags
// the user set explicitly.
func (c *CLI) pipelineOptions(cmd *cobra.Command, f *renderFlags) (pipeline.Options, error) {
	opts := c.Config.PipelineOptions()
	flags := cmd.Flags()

	if flags.Changed("horizontal-spacing") {
		opts.Layout.HorizontalSpacing = f.hSpacing
	}
	if flags.Changed("vertical-spacing") {
		opts.Layout.VerticalSpacing = f.vSpacing
	}
	if flags.Changed("node-height") {
		opts.Layout.NodeHeight = f.nodeHeight
	}
	if flags.Changed("anchor") {
		opts.Layout.Anchor = layout.Anchor(f.anchor)
	}
	if flags.Changed("reverse-cycles") {
		opts.Layout.ReverseCycles = f.reverseCycles
	}
	if flags.Changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}

	opts.Formats = parseFormats(f.formats)
	opts.Title = f.title
	opts.Detailed = f.detailed
	opts.Logger = c.Logger

	if err := opts.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
