package cache

// Keyer builds cache keys. Swap implementations to change key layout
// without touching callers (see [ScopedKeyer]).
type Keyer interface {
	// GraphKey is the key of a lineage graph fetched for a query.
	GraphKey(opts GraphKeyOpts) string
	// ArtifactKey is the key of a rendered artifact of a positioned graph.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts identifies a lineage query. Exactly one of Dataset and RunID
// is set.
type GraphKeyOpts struct {
	Dataset string `json:"dataset,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// ArtifactKeyOpts captures everything besides the node positions that
// changes the rendered bytes. Positions depend on node height and vertical
// spacing only through their sum, so the box height is keyed separately.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Title      string  `json:"title,omitempty"`
	Detailed   bool    `json:"detailed,omitempty"`
	NodeHeight float64 `json:"node_height"`
}

// DefaultKeyer produces "graph:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey hashes the query.
func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	return hashKey("graph", opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
