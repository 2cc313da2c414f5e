package events

import (
	"maps"
	"slices"
	"strings"

	"github.com/creditdesk/lineageflow/pkg/lineage"
)

// LabelProduces links an operation to its event dataset when the event
// names no input or output datasets.
const LabelProduces = "produces"

// builder accumulates nodes in first-seen order.
type builder struct {
	nodes []lineage.Node
	index map[string]int
	edges []lineage.Edge
}

func (b *builder) addNode(n lineage.Node) {
	if _, ok := b.index[n.ID]; ok {
		return
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

func (b *builder) node(id string) lineage.Node {
	return b.nodes[b.index[id]]
}

// Build converts events into a graph. Events with a non-empty
// outputs.path are expanded stage by stage; all other events become an
// operation node linked to their datasets.
//
// Map keys of inputs and outputs are visited in sorted order so that the
// same events always yield the same graph.
func Build(evs []Event) lineage.Graph {
	b := &builder{index: make(map[string]int)}
	for _, ev := range evs {
		if stages := ev.Path(); len(stages) > 0 {
			b.addPath(ev, stages)
		} else {
			b.addOperation(ev)
		}
	}
	return lineage.Graph{Nodes: b.nodes, Edges: b.edges}
}

func (b *builder) addPath(ev Event, stages []Stage) {
	prev := ""
	for _, s := range stages {
		n, ok := s.Node()
		if !ok {
			continue
		}
		b.addNode(n)
		if prev != "" {
			b.edges = append(b.edges, lineage.Edge{
				Source: prev,
				Target: n.ID,
				Label:  EdgeLabel(b.node(prev).Type, b.node(n.ID).Type),
				Metadata: lineage.Metadata{
					"event_id":  ev.ID,
					"timestamp": ev.CreatedAt,
				},
			})
		}
		prev = n.ID
	}
}

func (b *builder) addOperation(ev Event) {
	opID := ev.Operation + "-" + ev.ID
	b.addNode(lineage.Node{
		ID:    opID,
		Label: ev.Operation,
		Type:  lineage.NodeTypeOperation,
		Metadata: lineage.Metadata{
			"runId":     ev.RunID,
			"userName":  ev.UserName,
			"createdAt": ev.CreatedAt,
			"inputs":    ev.Inputs,
			"outputs":   ev.Outputs,
		},
	})

	linked := false
	for _, key := range slices.Sorted(maps.Keys(ev.Inputs)) {
		if id, ok := b.addDataset(ev.Inputs[key]); ok {
			b.edges = append(b.edges, lineage.Edge{Source: id, Target: opID, Label: edgeKey(key)})
			linked = true
		}
	}
	for _, key := range slices.Sorted(maps.Keys(ev.Outputs)) {
		if id, ok := b.addDataset(ev.Outputs[key]); ok {
			b.edges = append(b.edges, lineage.Edge{Source: opID, Target: id, Label: edgeKey(key)})
			linked = true
		}
	}

	if !linked && ev.Dataset != "" {
		id := "dataset-" + ev.Dataset
		b.addNode(lineage.Node{ID: id, Label: ev.Dataset, Type: lineage.NodeTypeDataset})
		b.edges = append(b.edges, lineage.Edge{Source: opID, Target: id, Label: LabelProduces})
	}
}

// addDataset adds the dataset node described by v, if v is an object with
// a non-empty "dataset" string.
func (b *builder) addDataset(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	name, _ := m["dataset"].(string)
	if name == "" {
		return "", false
	}
	id := "dataset-" + name
	b.addNode(lineage.Node{
		ID:       id,
		Label:    name,
		Type:     lineage.NodeTypeDataset,
		Metadata: lineage.Metadata(m),
	})
	return id, true
}

func edgeKey(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
