package lineage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes. Node and edge order
// is preserved.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes a graph from JSON bytes.
func UnmarshalGraph(data []byte) (Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// WriteGraph writes a graph as JSON to an io.Writer.
func WriteGraph(g Graph, w io.Writer) error {
	return encodeTo(g, w)
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g Graph, path string) error {
	return writeFile(path, g)
}

// ReadGraph decodes a JSON graph from an io.Reader. Shape validation is
// separate; call [Validate] on the result.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := decodeFrom(r, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// =============================================================================
// Positioned Graph Serialization API
// =============================================================================

// MarshalPositioned converts a positioned graph to indented JSON bytes.
func MarshalPositioned(pg PositionedGraph) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeTo(pg, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePositioned writes a positioned graph as JSON to an io.Writer.
func WritePositioned(pg PositionedGraph, w io.Writer) error {
	return encodeTo(pg, w)
}

// WritePositionedFile writes a positioned graph to a JSON file.
func WritePositionedFile(pg PositionedGraph, path string) error {
	return writeFile(path, pg)
}

// ReadPositioned decodes a positioned graph from an io.Reader.
func ReadPositioned(r io.Reader) (PositionedGraph, error) {
	var pg PositionedGraph
	if err := decodeFrom(r, &pg); err != nil {
		return PositionedGraph{}, err
	}
	return pg, nil
}

// UnmarshalPositioned decodes a positioned graph from JSON bytes.
func UnmarshalPositioned(data []byte) (PositionedGraph, error) {
	return ReadPositioned(bytes.NewReader(data))
}

// =============================================================================
// Internal Implementation
// =============================================================================

func encodeTo(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// decodeFrom decodes exactly one JSON value. Metadata numbers stay
// json.Number so large integer ids survive a round trip.
func decodeFrom(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("decode: unexpected data after JSON value")
	}
	return nil
}

func writeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encodeTo(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
