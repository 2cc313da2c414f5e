package layout

import (
	"math"
	"testing"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"CenterAnchor", func(c *Config) { c.Anchor = AnchorCenter }, false},
		{"EmptyAnchor", func(c *Config) { c.Anchor = "" }, false},
		{"ZeroHorizontal", func(c *Config) { c.HorizontalSpacing = 0 }, true},
		{"NegativeVertical", func(c *Config) { c.VerticalSpacing = -1 }, true},
		{"NaNHeight", func(c *Config) { c.NodeHeight = math.NaN() }, true},
		{"InfHorizontal", func(c *Config) { c.HorizontalSpacing = math.Inf(1) }, true},
		{"UnknownAnchor", func(c *Config) { c.Anchor = "bottom" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{VerticalSpacing: 20, NodeHeight: -5, Anchor: "nonsense"}.WithDefaults()

	if got.HorizontalSpacing != DefaultHorizontalSpacing {
		t.Errorf("HorizontalSpacing = %v, want %v", got.HorizontalSpacing, DefaultHorizontalSpacing)
	}
	if got.VerticalSpacing != 20 {
		t.Errorf("VerticalSpacing = %v, want 20", got.VerticalSpacing)
	}
	if got.NodeHeight != DefaultNodeHeight {
		t.Errorf("NodeHeight = %v, want %v", got.NodeHeight, DefaultNodeHeight)
	}
	if got.Anchor != AnchorTopLeft {
		t.Errorf("Anchor = %v, want %v", got.Anchor, AnchorTopLeft)
	}
	if p := (Config{}).Pitch(); p != 180 {
		t.Errorf("Pitch() = %v, want 180", p)
	}
}

func TestPositionLayers(t *testing.T) {
	layers := [][]string{{"a"}, {"b", "c", "d"}}
	cfg := Config{HorizontalSpacing: 100, VerticalSpacing: 10, NodeHeight: 30}

	got := PositionLayers(layers, cfg)

	want := map[string][2]float64{
		"a": {0, -20},
		"b": {100, -60},
		"c": {100, -20},
		"d": {100, 20},
	}
	for id, w := range want {
		p := got[id]
		if p.X != w[0] || p.Y != w[1] {
			t.Errorf("%s = (%v, %v), want (%v, %v)", id, p.X, p.Y, w[0], w[1])
		}
	}

	cfg.Anchor = AnchorCenter
	centered := PositionLayers(layers, cfg)
	if centered["a"].Y != 0 || centered["c"].Y != 0 {
		t.Errorf("centered a, c = %v, %v, want y = 0", centered["a"], centered["c"])
	}
}

func TestPositionLayers_Empty(t *testing.T) {
	if got := PositionLayers(nil, DefaultConfig()); len(got) != 0 {
		t.Errorf("PositionLayers(nil) = %v, want empty", got)
	}
}
