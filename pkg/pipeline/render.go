package pipeline

import (
	"context"
	"time"

	"github.com/creditdesk/lineageflow/pkg/cache"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/observability"
	"github.com/creditdesk/lineageflow/pkg/render"
	"github.com/creditdesk/lineageflow/pkg/render/dot"
	"github.com/creditdesk/lineageflow/pkg/render/echarts"
)

// RenderWithCacheInfo renders pg in every requested format. Artifacts are
// looked up per format; the boolean reports whether all of them came from
// cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, pg lineage.PositionedGraph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := cache.HashJSON(pg)
	if err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, ok := r.cacheGet(ctx, "artifact", key); ok {
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := RenderFormat(ctx, pg, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		r.cacheSet(ctx, "artifact", key, data, cache.ArtifactTTL)
	}
	return artifacts, allCached, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, pg lineage.PositionedGraph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, pg, opts)
	return artifacts, err
}

// RenderFormat renders pg in a single format without caching.
func RenderFormat(ctx context.Context, pg lineage.PositionedGraph, format string, opts Options) ([]byte, error) {
	if err := render.ValidateFormat(format); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(ctx, pg, format, opts)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func renderFormat(ctx context.Context, pg lineage.PositionedGraph, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatJSON:
		return lineage.MarshalPositioned(pg)
	case render.FormatHTML:
		return echarts.RenderHTML(pg, echarts.Options{
			Title:      opts.Title,
			NodeHeight: opts.Layout.NodeHeight,
		})
	}

	src := dot.ToDOT(pg, dot.Options{
		Title:      opts.Title,
		NodeHeight: opts.Layout.NodeHeight,
		Detailed:   opts.Detailed,
	})
	switch format {
	case render.FormatDOT:
		return []byte(src), nil
	case render.FormatSVG:
		return dot.RenderSVG(ctx, src)
	case render.FormatPNG:
		return dot.RenderPNG(ctx, src)
	default:
		return dot.RenderPDF(ctx, src)
	}
}
