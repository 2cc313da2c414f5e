package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/creditdesk/lineageflow/pkg/observability"
	"github.com/creditdesk/lineageflow/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  POST /v1/layout                                  graph JSON -> positioned JSON
  GET  /v1/layout/stream                           websocket, one graph per message
  POST /v1/render/{format}                         graph JSON -> svg, png, pdf, html, dot
  GET  /v1/lineage/datasets                        datasets known to the lineage service
  GET  /v1/lineage/datasets/{dataset}/layout       layout of a dataset's lineage
  GET  /v1/lineage/runs/{runID}/layout             layout of a pipeline run
  GET  /healthz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, addr string, noCache bool) error {
	ctx := cmd.Context()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewPrometheus(reg)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	if runner.Client == nil {
		printWarning("No lineage service configured; /v1/lineage routes will answer 503")
	}

	srv := server.New(server.Config{
		Runner:   runner,
		Defaults: c.Config.PipelineOptions(),
		Logger:   c.Logger,
		Metrics:  reg,
	})
	printInfo("Listening on %s", StyleLink.Render(displayAddr(addr)))
	return srv.Serve(ctx, addr)
}

// displayAddr turns a listen address into a clickable URL.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
