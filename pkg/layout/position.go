package layout

import "github.com/creditdesk/lineageflow/pkg/lineage"

// PositionLayers maps every id of layers to a coordinate.
//
// For column i, row j and column size n, with pitch = NodeHeight +
// VerticalSpacing:
//
//	x = i * HorizontalSpacing
//	y = j * pitch - n * pitch / 2
//
// With [AnchorCenter] every y is shifted by pitch/2. Each column is centered
// on y = 0 independently of the others.
func PositionLayers(layers [][]string, cfg Config) map[string]lineage.Position {
	cfg = cfg.WithDefaults()
	pitch := cfg.NodeHeight + cfg.VerticalSpacing

	offset := 0.0
	if cfg.Anchor == AnchorCenter {
		offset = pitch / 2
	}

	total := 0
	for _, layer := range layers {
		total += len(layer)
	}
	positions := make(map[string]lineage.Position, total)

	for i, layer := range layers {
		x := float64(i) * cfg.HorizontalSpacing
		half := float64(len(layer)) * pitch / 2
		for j, id := range layer {
			positions[id] = lineage.Position{
				X: x,
				Y: float64(j)*pitch - half + offset,
			}
		}
	}
	return positions
}
