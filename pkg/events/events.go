// Package events converts raw lineage events into a lineage graph.
//
// The lineage service records one event per tracked operation. Two event
// shapes exist:
//
//   - Path events carry outputs.path, an ordered list of stages (HTTP
//     endpoint, service method, repository method, dataset) describing one
//     request through the backend. Each stage becomes a node and consecutive
//     stages are linked.
//   - Input/output events carry datasets under inputs and outputs. Each
//     event becomes an operation node linked to the datasets it read and
//     wrote.
//
// [Build] accepts a mix of both and deduplicates nodes by id in first-seen
// order.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Event is one lineage event as returned by the lineage service.
type Event struct {
	ID        string         `json:"id"`
	Dataset   string         `json:"dataset"`
	Operation string         `json:"operation"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	Outputs   map[string]any `json:"outputs,omitempty"`
	UserName  string         `json:"userName,omitempty"`
	RunID     string         `json:"runId,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
}

// Path returns the stages of a path event, or nil for input/output events.
// Entries that are not JSON objects are dropped.
func (e Event) Path() []Stage {
	raw, ok := e.Outputs["path"].([]any)
	if !ok {
		return nil
	}
	stages := make([]Stage, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			stages = append(stages, Stage(m))
		}
	}
	return stages
}

// ReadEvents decodes a JSON array of events. Numbers inside inputs and
// outputs are kept as json.Number.
func ReadEvents(r io.Reader) ([]Event, error) {
	var evs []Event
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&evs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode events: unexpected data after JSON array")
	}
	return evs, nil
}

// ReadEventsFile reads a JSON array of events from path.
func ReadEventsFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadEvents(f)
}
