package render

import (
	"slices"
	"strings"
	"unicode/utf8"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatSVG, FormatPNG, FormatPDF, FormatHTML, FormatDOT}

// ValidateFormat checks that format is one of [Formats].
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return apperrors.New(apperrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// Style is the color scheme of one node kind.
type Style struct {
	Fill   string
	Border string
	Text   string
}

// EdgeColor is the stroke color of every edge.
const EdgeColor = "#00F000"

var (
	datasetStyle = Style{Fill: "#1EE6BE", Border: "#00FFC3", Text: "#3C4B61"}
	processStyle = Style{Fill: "#3C4B61", Border: "#00E8F7", Text: "#FFFFFF"}
	storeStyle   = Style{Fill: "#24303F", Border: "#7B8BA3", Text: "#FFFFFF"}
)

// StyleFor returns the style of a node type. Datasets stand out; the
// request path stages (endpoint, service) share the operation style and
// repositories are muted.
func StyleFor(t lineage.NodeType) Style {
	switch t {
	case lineage.NodeTypeDataset:
		return datasetStyle
	case lineage.NodeTypeRepository:
		return storeStyle
	default:
		return processStyle
	}
}

// MaxLabelLength is the longest label drawn inside a node.
const MaxLabelLength = 25

// TruncateLabel shortens s to at most max runes, ending it with "..." when
// cut.
func TruncateLabel(s string, max int) string {
	if max <= 3 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
