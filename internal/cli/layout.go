package cli

import (
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
)

// layoutCommand creates the layout command for positioning a graph file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   renderFlags
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json|-]",
		Short: "Compute a layered layout for a lineage graph",
		Long: `Compute a left-to-right layered layout for a lineage graph.

The input is a graph JSON file ({"nodes": [...], "edges": [...]}) or "-" for
stdin. Every node is assigned a layer (its x coordinate) and a slot within
the layer (its y coordinate). The positioned graph is written as JSON, or
rendered with --format svg|png|pdf|html|dot.

Rendered outputs are cached, so repeated runs on the same graph are fast.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdio
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd, input, &flags, summary)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of the layers")

	return cmd
}

// runLayout reads the graph, lays it out, and writes the outputs.
func (c *CLI) runLayout(cmd *cobra.Command, input string, flags *renderFlags, summary bool) error {
	ctx := cmd.Context()
	opts, err := c.pipelineOptions(cmd, flags)
	if err != nil {
		return err
	}

	g, err := readGraph(cmd, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newProgress(loggerFromContext(ctx), "laid out")
	name := input
	if name == stdio {
		name = "stdin"
	}
	spinner := newSpinner(ctx, "Laying out "+name)
	spinner.Detail("%d nodes, %s", g.NodeCount(), strings.Join(opts.Formats, ", "))
	spinner.Start()

	result, err := runner.Run(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	p.layout(result.Summary, result.CacheInfo.RenderHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.report(cmd, flags, opts, result, summary)
}

// report writes the artifacts of result and prints what was produced.
func (c *CLI) report(cmd *cobra.Command, flags *renderFlags, opts pipeline.Options, result *pipeline.Result, summary bool) error {
	paths, err := writeArtifacts(cmd, flags.output, opts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	if summary {
		printSummary(result.Summary, layout.Layers(result.Graph, opts.Layout), opts.Layout)
	}
	return nil
}

// readGraph decodes a graph file, or stdin for "-".
func readGraph(cmd *cobra.Command, input string) (lineage.Graph, error) {
	in, err := openInput(cmd, input)
	if err != nil {
		return lineage.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open graph")
	}
	defer in.Close()

	g, err := lineage.ReadGraph(in)
	if err != nil {
		return lineage.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read graph %s", input)
	}
	return g, nil
}

// writeArtifacts writes one artifact per format. A single format goes to
// output (stdout when empty); several formats share output as a base name
// and get the format as extension. It returns the files written.
func writeArtifacts(cmd *cobra.Command, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if len(formats) == 1 {
		if err := writeOutput(cmd, output, artifacts[formats[0]]); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", output)
		}
		if output == "" || output == stdio {
			return nil, nil
		}
		return []string{output}, nil
	}

	base := output
	if base == "" || base == stdio {
		base = appName
	}
	base = trimExt(base)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if err := writeOutput(cmd, path, artifacts[f]); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
