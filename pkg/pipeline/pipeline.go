// Package pipeline provides the fetch → layout → render pipeline for
// lineageflow.
//
// This package implements the complete pipeline used by the CLI and the
// HTTP API. By centralizing this logic, both entry points validate, cache,
// log and instrument requests the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Query the lineage service and build a graph from its events
//     (or accept a graph supplied by the caller)
//  2. Layout: Validate the graph and compute node positions
//  3. Render: Generate output in various formats (JSON, SVG, PNG, PDF,
//     HTML, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Client = lineageClient
//	result, err := runner.Execute(ctx, client.Query{Dataset: "cds_trades"}, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, _, err := runner.Fetch(ctx, query, false)
//	pg, err := runner.Layout(ctx, g, opts)
//	artifacts, _, err := runner.Render(ctx, pg, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/creditdesk/lineageflow/pkg/cache"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMaxNodes is the largest graph accepted for layout.
const DefaultMaxNodes = lineage.DefaultMaxNodes

// DefaultFormat is the output format when none is requested.
const DefaultFormat = render.FormatJSON

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout and render stages.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout   layout.Config `json:"layout"`
	MaxNodes int           `json:"max_nodes,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Include node metadata in DOT labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input lineage graph.
	Graph lineage.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Positioned is the laid out graph.
	Positioned lineage.PositionedGraph

	// Summary describes the layout (layers, bounds).
	Summary layout.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the graph came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// Validate applies defaults and checks the options. Unset (zero) values
// take their defaults; negative or non-finite spacing and unknown anchors
// or formats are rejected. It is idempotent.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.MaxNodes < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "max_nodes must not be negative, got %d", o.MaxNodes)
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// SetDefaults fills zero values with defaults. Unlike
// [layout.Config.WithDefaults] it leaves invalid values in place so that
// Validate can report them.
func (o *Options) SetDefaults() {
	d := layout.DefaultConfig()
	if o.Layout.HorizontalSpacing == 0 {
		o.Layout.HorizontalSpacing = d.HorizontalSpacing
	}
	if o.Layout.VerticalSpacing == 0 {
		o.Layout.VerticalSpacing = d.VerticalSpacing
	}
	if o.Layout.NodeHeight == 0 {
		o.Layout.NodeHeight = d.NodeHeight
	}
	if o.Layout.Anchor == "" {
		o.Layout.Anchor = d.Anchor
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Title:      o.Title,
		Detailed:   o.Detailed,
		NodeHeight: o.Layout.NodeHeight,
	}
}
