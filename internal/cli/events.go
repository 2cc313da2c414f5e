package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/events"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// eventsCommand creates the events command for converting exported lineage
// events into a graph.
func (c *CLI) eventsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "events [events.json|-]",
		Short: "Build a lineage graph from exported lineage events",
		Long: `Build a lineage graph from a JSON array of lineage events, as returned by
the lineage service.

Each event contributes its operation node, the datasets it read and wrote,
and the request path that triggered it (endpoint, service, repository).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdio
			if len(args) == 1 {
				input = args[0]
			}
			return c.runEvents(cmd, input, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func (c *CLI) runEvents(cmd *cobra.Command, input, output string) error {
	p := newProgress(loggerFromContext(cmd.Context()), "built graph")

	in, err := openInput(cmd, input)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open events")
	}
	defer in.Close()

	evs, err := events.ReadEvents(in)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read events %s", input)
	}

	g := events.Build(evs)

	data, err := lineage.MarshalGraph(g)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, output, data); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", output)
	}
	p.graph(g, "events", len(evs))

	if output != "" && output != stdio {
		printFile(output)
		printStats(g.NodeCount(), g.EdgeCount(), false)
		printNextStep("Lay out", fmt.Sprintf("%s layout %s --summary", appName, output))
	}
	return nil
}
