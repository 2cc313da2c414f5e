package render

import (
	"testing"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"html", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want INVALID_FORMAT", tt.format, apperrors.GetCode(err))
		}
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ContentType(f) == "application/octet-stream" {
			t.Errorf("ContentType(%q) has no specific type", f)
		}
	}
	if got := ContentType("bin"); got != "application/octet-stream" {
		t.Errorf("ContentType(bin) = %q", got)
	}
}

func TestStyleFor(t *testing.T) {
	if StyleFor(lineage.NodeTypeDataset) == StyleFor(lineage.NodeTypeOperation) {
		t.Error("datasets and operations should be styled differently")
	}
	if StyleFor(lineage.NodeTypeService) != StyleFor(lineage.NodeTypeOperation) {
		t.Error("services should share the operation style")
	}
	if StyleFor("") != StyleFor(lineage.NodeTypeOperation) {
		t.Error("unknown types should fall back to the operation style")
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 25, "short"},
		{"exactly_twenty_five_chars", 25, "exactly_twenty_five_chars"},
		{"TradeRepository.saveAllAndFlush()", 25, "TradeRepository.saveAl..."},
		{"données_de_marché_historiques", 10, "données..."},
		{"anything", 3, "anything"},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateLabel(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
