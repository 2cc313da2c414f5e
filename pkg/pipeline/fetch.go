package pipeline

import (
	"context"
	"time"

	"github.com/creditdesk/lineageflow/pkg/cache"
	"github.com/creditdesk/lineageflow/pkg/client"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/observability"
)

// FetchWithCacheInfo builds the lineage graph for q, reading through the
// graph cache unless refresh is set. The boolean reports a cache hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, q client.Query, refresh bool) (lineage.Graph, bool, error) {
	if err := q.Validate(); err != nil {
		return lineage.Graph{}, false, err
	}
	if r.Client == nil {
		return lineage.Graph{}, false, apperrors.New(apperrors.ErrCodeUnavailable,
			"no lineage service configured")
	}

	key := r.Keyer.GraphKey(cache.GraphKeyOpts{Dataset: q.Dataset, RunID: q.RunID})
	if !refresh {
		if data, ok := r.cacheGet(ctx, "graph", key); ok {
			if g, err := lineage.UnmarshalGraph(data); err == nil {
				r.Logger.Debug("graph cache hit", "query", q, "nodes", g.NodeCount())
				return g, true, nil
			}
			// Undecodable entries are treated as a miss and overwritten.
		}
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, q.String())
	start := time.Now()

	g, err := r.Client.Graph(ctx, q)
	hooks.OnFetchComplete(ctx, q.String(), g.NodeCount(), time.Since(start), err)
	if err != nil {
		return lineage.Graph{}, false, err
	}

	r.Logger.Info("fetched lineage",
		"query", q,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))

	if data, err := lineage.MarshalGraph(g); err == nil {
		ttl := r.GraphTTL
		if ttl <= 0 {
			ttl = cache.GraphTTL
		}
		r.cacheSet(ctx, "graph", key, data, ttl)
	}
	return g, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Fetch(ctx context.Context, q client.Query, refresh bool) (lineage.Graph, error) {
	g, _, err := r.FetchWithCacheInfo(ctx, q, refresh)
	return g, err
}
