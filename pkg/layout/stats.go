package layout

import (
	"math"

	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// Bounds is the axis-aligned box spanned by the node positions.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Summary describes the shape of a positioned graph.
type Summary struct {
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	LayerCount   int    `json:"layer_count"`
	MaxLayerSize int    `json:"max_layer_size"`
	Bounds       Bounds `json:"bounds"`
}

// Stats summarizes pg. Columns are recovered from the distinct x values;
// records sharing an id are counted once.
func Stats(pg lineage.PositionedGraph) Summary {
	s := Summary{Nodes: len(pg.Nodes), Edges: len(pg.Edges)}
	if len(pg.Nodes) == 0 {
		return s
	}

	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	columns := make(map[float64]map[string]struct{})
	for _, n := range pg.Nodes {
		p := n.Position
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)

		col, ok := columns[p.X]
		if !ok {
			col = make(map[string]struct{})
			columns[p.X] = col
		}
		col[n.ID] = struct{}{}
	}

	s.Bounds = b
	s.LayerCount = len(columns)
	for _, col := range columns {
		s.MaxLayerSize = max(s.MaxLayerSize, len(col))
	}
	return s
}
