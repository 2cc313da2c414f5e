// Package lineage defines the wire types for lineage graphs and their
// positioned form.
//
// A lineage graph describes how datasets, operations, HTTP endpoints,
// services and repositories feed each other. The lineage service returns it
// without coordinates; [github.com/creditdesk/lineageflow/pkg/layout] attaches
// them.
//
// # Wire Format
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [
//	    {"id": "dataset-trades", "label": "trades", "type": "dataset"},
//	    {"id": "price-42", "label": "price", "type": "operation"}
//	  ],
//	  "edges": [
//	    {"source": "dataset-trades", "target": "price-42", "label": "input"}
//	  ]
//	}
//
// A positioned graph has the same shape with a "position" object on every
// node:
//
//	{"id": "price-42", ..., "position": {"x": 300, "y": -90}}
//
// # Validation
//
// [Validate] checks the shape a lineage query must have before it is laid
// out: non-empty unique ids, a known [NodeType] and a bounded node count.
// Edges that reference unknown ids are accepted; the layout engine treats
// them as inert.
//
// # Concurrency
//
// All functions are safe for concurrent use. Graph values are plain data;
// callers that share them must not mutate them concurrently.
package lineage
