package layout

import (
	"math"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
)

// Default spacing in display units.
const (
	DefaultHorizontalSpacing = 300.0
	DefaultVerticalSpacing   = 100.0
	DefaultNodeHeight        = 80.0
)

// Anchor selects which point of a node box the y coordinate refers to.
type Anchor string

const (
	// AnchorTopLeft places a column so that its boxes, measured from their
	// top edge, span [-size*pitch/2, size*pitch/2).
	AnchorTopLeft Anchor = "top-left"
	// AnchorCenter shifts every row by half a pitch so that the box centers
	// are symmetric around y = 0. A single-node column sits at y = 0.
	AnchorCenter Anchor = "center"
)

// Valid reports whether a is a known anchor. The empty anchor is valid and
// means AnchorTopLeft.
func (a Anchor) Valid() bool {
	return a == "" || a == AnchorTopLeft || a == AnchorCenter
}

// Config holds the spacing options of the engine.
//
// The zero value is usable: every non-positive spacing is replaced by its
// default when the engine runs. Use [Config.Validate] at configuration
// boundaries to reject such values instead.
type Config struct {
	// HorizontalSpacing is the column pitch.
	HorizontalSpacing float64 `json:"horizontal_spacing" toml:"horizontal_spacing"`
	// VerticalSpacing is the gap between stacked boxes in a column.
	VerticalSpacing float64 `json:"vertical_spacing" toml:"vertical_spacing"`
	// NodeHeight is the nominal box height used for spacing math only.
	NodeHeight float64 `json:"node_height" toml:"node_height"`

	Anchor        Anchor `json:"anchor,omitempty" toml:"anchor"`
	ReverseCycles bool   `json:"reverse_cycles,omitempty" toml:"reverse_cycles"`
}

// DefaultConfig returns the default spacing (300 / 100 / 80, top-left anchor,
// remainder-bucket cycle handling).
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		NodeHeight:        DefaultNodeHeight,
		Anchor:            AnchorTopLeft,
	}
}

// Validate rejects non-positive or non-finite spacing and unknown anchors.
func (c Config) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"horizontal_spacing", c.HorizontalSpacing},
		{"vertical_spacing", c.VerticalSpacing},
		{"node_height", c.NodeHeight},
	} {
		if !usable(f.value) {
			return apperrors.New(apperrors.ErrCodeInvalidConfig,
				"%s must be a positive number, got %v", f.name, f.value)
		}
	}
	if !c.Anchor.Valid() {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"unknown anchor %q (want %q or %q)", c.Anchor, AnchorTopLeft, AnchorCenter)
	}
	return nil
}

// WithDefaults returns c with every unusable field replaced by its default.
func (c Config) WithDefaults() Config {
	if !usable(c.HorizontalSpacing) {
		c.HorizontalSpacing = DefaultHorizontalSpacing
	}
	if !usable(c.VerticalSpacing) {
		c.VerticalSpacing = DefaultVerticalSpacing
	}
	if !usable(c.NodeHeight) {
		c.NodeHeight = DefaultNodeHeight
	}
	if !c.Anchor.Valid() || c.Anchor == "" {
		c.Anchor = AnchorTopLeft
	}
	return c
}

// Pitch is the vertical distance between consecutive rows of a column.
func (c Config) Pitch() float64 {
	c = c.WithDefaults()
	return c.NodeHeight + c.VerticalSpacing
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
