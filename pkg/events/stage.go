package events

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// Stage kinds found in outputs.path.
const (
	StageHTTPEndpoint = "http_endpoint"
	StageService      = "service"
	StageRepository   = "repository"
	StageDataset      = "dataset"
)

// Edge labels between consecutive path stages.
const (
	LabelCalls    = "CALLS"
	LabelUses     = "USES"
	LabelPersists = "PERSISTS"
	LabelFlowsTo  = "FLOWS_TO"
)

// Stage is one hop of a path event.
type Stage map[string]any

func (s Stage) str(key string) string {
	v, _ := s[key].(string)
	return v
}

// Kind returns the stage kind ("stage" field).
func (s Stage) Kind() string { return s.str("stage") }

// Node converts the stage into a node. It reports false for unknown kinds
// and for stages missing the fields that identify them.
func (s Stage) Node() (lineage.Node, bool) {
	layer := s.str("layer")
	switch s.Kind() {
	case StageHTTPEndpoint:
		method, endpoint := s.str("method"), s.str("endpoint")
		if endpoint == "" {
			return lineage.Node{}, false
		}
		return lineage.Node{
			ID:    "endpoint:" + endpoint,
			Label: strings.TrimSpace(method + " " + endpoint),
			Type:  lineage.NodeTypeEndpoint,
			Metadata: lineage.Metadata{
				"http_method": method,
				"endpoint":    endpoint,
				"layer":       layer,
			},
		}, true

	case StageService:
		class, method := s.str("class"), s.str("method")
		if class == "" || method == "" {
			return lineage.Node{}, false
		}
		return lineage.Node{
			ID:    "service:" + class + "." + method,
			Label: class + "." + method + "()",
			Type:  lineage.NodeTypeService,
			Metadata: lineage.Metadata{
				"class":  class,
				"method": method,
				"layer":  layer,
			},
		}, true

	case StageRepository:
		iface, method := s.str("interface"), s.str("method")
		if iface == "" || method == "" {
			return lineage.Node{}, false
		}
		return lineage.Node{
			ID:    "repository:" + iface + "." + method,
			Label: iface + "." + method + "()",
			Type:  lineage.NodeTypeRepository,
			Metadata: lineage.Metadata{
				"interface": iface,
				"method":    method,
				"layer":     layer,
			},
		}, true

	case StageDataset:
		dataset := s.str("dataset")
		if dataset == "" {
			return lineage.Node{}, false
		}
		return lineage.Node{
			ID:    dataset,
			Label: TitleCase(dataset),
			Type:  lineage.NodeTypeDataset,
			Metadata: lineage.Metadata{
				"table_name": dataset,
				"operation":  s.str("operation"),
				"layer":      layer,
			},
		}, true
	}
	return lineage.Node{}, false
}

// EdgeLabel names the relation between two consecutive stages.
func EdgeLabel(from, to lineage.NodeType) string {
	switch {
	case from == lineage.NodeTypeEndpoint && to == lineage.NodeTypeService:
		return LabelCalls
	case from == lineage.NodeTypeService && to == lineage.NodeTypeService:
		return LabelCalls
	case from == lineage.NodeTypeService && to == lineage.NodeTypeRepository:
		return LabelUses
	case from == lineage.NodeTypeRepository && to == lineage.NodeTypeDataset:
		return LabelPersists
	default:
		return LabelFlowsTo
	}
}

// TitleCase turns a snake_case table name into "Title Case":
// "cds_trade_events" becomes "Cds Trade Events".
func TitleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
