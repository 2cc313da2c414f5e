package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creditdesk/lineageflow/pkg/client"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
)

// errNoService is returned when a command needs the lineage service but
// none is configured.
var errNoService = apperrors.New(apperrors.ErrCodeUnavailable,
	"no lineage service configured (set lineage.base_url or %s)", "LINEAGEFLOW_LINEAGE_URL")

// fetchCommand creates the fetch command for pulling graphs from the
// lineage service.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		query   client.Query
		pick    bool
		refresh bool
		noCache bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "fetch (--dataset NAME | --run ID | --pick)",
		Short: "Fetch a lineage graph from the lineage service",
		Long: `Fetch lineage events from the lineage service and write the graph they
describe as JSON.

Select the events by dataset (every run that read or wrote it) or by pipeline
run. With --pick, the available datasets are listed in an interactive picker.

Fetched graphs are cached; use --refresh to bypass the cache.`,
		Example: `  lineageflow fetch --dataset cds_trades -o trades.json
  lineageflow fetch --run 7f9c2 | lineageflow layout - --format html -o run.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pick && (query.Dataset != "" || query.RunID != "") {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "--pick cannot be combined with --dataset or --run")
			}
			return c.runFetch(cmd, query, pick, refresh, noCache, output)
		},
	}

	cmd.Flags().StringVar(&query.Dataset, "dataset", "", "dataset name")
	cmd.Flags().StringVar(&query.RunID, "run", "", "pipeline run id")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the dataset interactively")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached graph")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagsMutuallyExclusive("dataset", "run")

	return cmd
}

// runFetch resolves the query, fetches the graph and writes it.
func (c *CLI) runFetch(cmd *cobra.Command, q client.Query, pick, refresh, noCache bool, output string) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if runner.Client == nil {
		return errNoService
	}

	if pick {
		spinner := newSpinner(ctx, "Listing datasets")
		spinner.Start()
		names, err := runner.Client.Datasets(ctx)
		if err != nil {
			spinner.StopWithError("Listing datasets failed")
			return err
		}
		spinner.Stop()
		if len(names) == 0 {
			return apperrors.New(apperrors.ErrCodeNotFound, "the lineage service has no datasets")
		}
		if q.Dataset, err = pickDataset(ctx, names); err != nil {
			return err
		}
	}
	if err := q.Validate(); err != nil {
		return err
	}

	p := newProgress(loggerFromContext(ctx), "fetched")
	g, hit, err := fetchGraph(cmd, runner, q, refresh)
	if err != nil {
		return err
	}
	p.graph(g, "query", q.String(), "cached", hit)

	data, err := lineage.MarshalGraph(g)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, output, data); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "write %s", output)
	}

	printSuccess("Fetched %s", q)
	if output != "" && output != stdio {
		printFile(output)
	}
	printStats(g.NodeCount(), g.EdgeCount(), hit)
	if output != "" && output != stdio {
		printNextStep("Lay out", fmt.Sprintf("%s layout %s --summary", appName, output))
	}
	return nil
}

func fetchGraph(cmd *cobra.Command, runner *pipeline.Runner, q client.Query, refresh bool) (lineage.Graph, bool, error) {
	spinner := newSpinner(cmd.Context(), "Fetching "+q.String())
	if refresh {
		spinner.Detail("refresh")
	}
	spinner.Start()

	g, hit, err := runner.FetchWithCacheInfo(cmd.Context(), q, refresh)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return lineage.Graph{}, false, err
	}
	spinner.Stop()
	return g, hit, nil
}
