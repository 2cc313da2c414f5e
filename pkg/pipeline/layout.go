package pipeline

import (
	"context"
	"time"

	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/observability"
)

// Layout validates g at the boundary and computes its positions.
// Layouts are not cached: the engine is cheaper than a cache round trip.
func (r *Runner) Layout(ctx context.Context, g lineage.Graph, opts Options) (lineage.PositionedGraph, error) {
	if err := opts.Validate(); err != nil {
		return lineage.PositionedGraph{}, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	if err := lineage.Validate(g, opts.MaxNodes); err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return lineage.PositionedGraph{}, err
	}

	pg := layout.Compute(g, opts.Layout)
	summary := layout.Stats(pg)
	hooks.OnLayoutComplete(ctx, summary.LayerCount, time.Since(start), nil)

	if dangling := lineage.DanglingEdges(g); len(dangling) > 0 {
		opts.Logger.Debug("edges reference unknown nodes", "count", len(dangling))
	}
	opts.Logger.Info("computed layout",
		"nodes", summary.Nodes,
		"layers", summary.LayerCount,
		"duration", time.Since(start))

	return pg, nil
}
