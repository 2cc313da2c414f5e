package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/creditdesk/lineageflow/pkg/buildinfo"
	"github.com/creditdesk/lineageflow/pkg/client"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/layout"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
	"github.com/creditdesk/lineageflow/pkg/render"
)

// CacheHeader reports whether an artifact was served from cache.
const CacheHeader = "X-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := readGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pg, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := render.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	g, err := readGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, res.Artifacts[format], res.CacheInfo.RenderHit)
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	if s.runner.Client == nil {
		s.writeError(w, r, errNoLineageService())
		return
	}
	names, err := s.runner.Client.Datasets(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleDatasetLayout(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, client.Query{Dataset: chi.URLParam(r, "dataset")})
}

func (s *Server) handleRunLayout(w http.ResponseWriter, r *http.Request) {
	s.serveQuery(w, r, client.Query{RunID: chi.URLParam(r, "runID")})
}

// serveQuery fetches the lineage for q and answers with the artifact named
// by the format query parameter (json by default). refresh=true bypasses
// the graph cache.
func (s *Server) serveQuery(w http.ResponseWriter, r *http.Request, q client.Query) {
	if s.runner.Client == nil {
		s.writeError(w, r, errNoLineageService())
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatJSON
	}
	if err := render.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	refresh, err := boolParam(r, "refresh")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.runner.Fetch(r.Context(), q, refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, format, res.Artifacts[format], res.CacheInfo.RenderHit)
}

func errNoLineageService() error {
	return apperrors.New(apperrors.ErrCodeUnavailable, "no lineage service configured")
}

func writeArtifact(w http.ResponseWriter, format string, data []byte, cached bool) {
	w.Header().Set("Content-Type", render.ContentType(format))
	if cached {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func readGraph(w http.ResponseWriter, r *http.Request) (lineage.Graph, error) {
	g, err := lineage.ReadGraph(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		return lineage.Graph{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "request body is not a valid graph")
	}
	return g, nil
}

// options overlays the query parameters of r on the server defaults and
// validates the result.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = nil
	opts.Logger = s.logger

	q := r.URL.Query()
	floats := []struct {
		name string
		dst  *float64
	}{
		{"horizontal_spacing", &opts.Layout.HorizontalSpacing},
		{"vertical_spacing", &opts.Layout.VerticalSpacing},
		{"node_height", &opts.Layout.NodeHeight},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a number, got %q", f.name, v)
		}
		*f.dst = n
	}
	if v := q.Get("anchor"); v != "" {
		opts.Layout.Anchor = layout.Anchor(v)
	}

	var err error
	if q.Has("reverse_cycles") {
		if opts.Layout.ReverseCycles, err = boolParam(r, "reverse_cycles"); err != nil {
			return opts, err
		}
	}
	if q.Has("detailed") {
		if opts.Detailed, err = boolParam(r, "detailed"); err != nil {
			return opts, err
		}
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.New(apperrors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}
