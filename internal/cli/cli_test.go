package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creditdesk/lineageflow/pkg/buildinfo"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/events"
	"github.com/creditdesk/lineageflow/pkg/lineage"
)

const chainJSON = `{
	"nodes": [
		{"id": "raw", "type": "dataset", "label": "Raw Trades"},
		{"id": "clean", "type": "operation"}
	],
	"edges": [{"source": "raw", "target": "clean"}]
}`

const memoryConfig = `
[cache]
backend = "memory"
`

// runCLI executes the root command with a config file holding cfg and
// returns what the command wrote to stdout.
func runCLI(t *testing.T, cfg, stdin string, args ...string) (string, error) {
	t.Helper()

	prev := statusOut
	statusOut = io.Discard
	t.Cleanup(func() { statusOut = prev })

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", path}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodePositioned(t *testing.T, s string) lineage.PositionedGraph {
	t.Helper()
	pg, err := lineage.UnmarshalPositioned([]byte(s))
	if err != nil {
		t.Fatalf("decode output: %v\n%s", err, s)
	}
	return pg
}

func position(t *testing.T, pg lineage.PositionedGraph, id string) lineage.Position {
	t.Helper()
	p, ok := pg.Position(id)
	if !ok {
		t.Fatalf("node %q missing from output", id)
	}
	return p
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCLI(t, memoryConfig, chainJSON, "layout", "-")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}

	pg := decodePositioned(t, out)
	tests := []struct {
		id   string
		want lineage.Position
	}{
		{"raw", lineage.Position{X: 0, Y: -90}},
		{"clean", lineage.Position{X: 300, Y: -90}},
	}
	for _, tt := range tests {
		if got := position(t, pg, tt.id); got != tt.want {
			t.Errorf("position(%s) = %+v, want %+v", tt.id, got, tt.want)
		}
	}
}

func TestLayoutCommandFlags(t *testing.T) {
	out, err := runCLI(t, memoryConfig, chainJSON,
		"layout", "--anchor", "center", "--horizontal-spacing", "150")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}

	pg := decodePositioned(t, out)
	if got, want := position(t, pg, "clean"), (lineage.Position{X: 150, Y: 0}); got != want {
		t.Errorf("position(clean) = %+v, want %+v", got, want)
	}
}

func TestLayoutCommandUsesConfig(t *testing.T) {
	cfg := memoryConfig + `
[layout]
horizontal_spacing = 500
`
	out, err := runCLI(t, cfg, chainJSON, "layout")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}

	if got := position(t, decodePositioned(t, out), "clean").X; got != 500 {
		t.Errorf("clean.x = %v, want 500", got)
	}

	// Flags win over the file.
	out, err = runCLI(t, cfg, chainJSON, "layout", "--horizontal-spacing", "50")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if got := position(t, decodePositioned(t, out), "clean").X; got != 50 {
		t.Errorf("clean.x = %v, want 50", got)
	}
}

func TestLayoutCommandFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(input, []byte(chainJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "layout.json")

	out, err := runCLI(t, memoryConfig, "", "layout", input, "-o", output, "--summary")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty when writing to a file", out)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := position(t, decodePositioned(t, string(data)), "clean").X; got != 300 {
		t.Errorf("clean.x = %v, want 300", got)
	}
}

func TestLayoutCommandFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "lineage.out")

	if _, err := runCLI(t, memoryConfig, chainJSON,
		"layout", "--format", "json,dot", "--title", "Trades", "-o", base); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	dot, err := os.ReadFile(filepath.Join(filepath.Dir(base), "lineage.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph lineage {") {
		t.Errorf("dot output starts with %q", string(dot[:min(len(dot), 20)]))
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "lineage.json")); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  apperrors.Code
	}{
		{"malformed json", `{"nodes": [`, nil, apperrors.ErrCodeInvalidInput},
		{"duplicate id", `{"nodes": [{"id": "a", "type": "dataset"}, {"id": "a", "type": "dataset"}]}`, nil, apperrors.ErrCodeInvalidGraph},
		{"unknown type", `{"nodes": [{"id": "a", "type": "table"}]}`, nil, apperrors.ErrCodeInvalidNodeType},
		{"bad anchor", chainJSON, []string{"--anchor", "middle"}, apperrors.ErrCodeInvalidConfig},
		{"negative spacing", chainJSON, []string{"--vertical-spacing", "-1"}, apperrors.ErrCodeInvalidConfig},
		{"unknown format", chainJSON, []string{"--format", "gif"}, apperrors.ErrCodeInvalidFormat},
		{"too many nodes", chainJSON, []string{"--max-nodes", "1"}, apperrors.ErrCodeInvalidGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, memoryConfig, tt.stdin, append([]string{"layout"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := apperrors.GetCode(err); got != tt.want {
				t.Errorf("GetCode(%v) = %s, want %s", err, got, tt.want)
			}
		})
	}
}

func TestConfigErrorsStopCommands(t *testing.T) {
	_, err := runCLI(t, "[cache]\nbackend = \"tape\"\n", chainJSON, "layout")
	if got := apperrors.GetCode(err); got != apperrors.ErrCodeInvalidConfig {
		t.Errorf("GetCode(%v) = %s, want %s", err, got, apperrors.ErrCodeInvalidConfig)
	}
}

const eventsJSON = `[{
	"id": "ev-1",
	"dataset": "cds_trades",
	"operation": "CREATE_TRADE",
	"createdAt": "2024-03-01T12:00:00Z",
	"outputs": {
		"path": [
			{"stage": "http_endpoint", "method": "POST", "endpoint": "/api/trades"},
			{"stage": "service", "class": "TradeService", "method": "create"},
			{"stage": "dataset", "dataset": "cds_trades", "operation": "INSERT"}
		]
	}
}]`

func TestEventsCommand(t *testing.T) {
	out, err := runCLI(t, memoryConfig, eventsJSON, "events")
	if err != nil {
		t.Fatalf("events error: %v", err)
	}

	g, err := lineage.UnmarshalGraph([]byte(out))
	if err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("graph = %d nodes, %d edges, want 3 and 2", len(g.Nodes), len(g.Edges))
	}
	if g.Nodes[0].ID != "endpoint:/api/trades" {
		t.Errorf("first node = %s, want endpoint:/api/trades", g.Nodes[0].ID)
	}

	// The output feeds straight into layout.
	laid, err := runCLI(t, memoryConfig, out, "layout")
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if got := position(t, decodePositioned(t, laid), "cds_trades").X; got != 600 {
		t.Errorf("cds_trades.x = %v, want 600", got)
	}
}

func TestEventsCommandRejectsMalformed(t *testing.T) {
	_, err := runCLI(t, memoryConfig, `{"not": "an array"}`, "events")
	if got := apperrors.GetCode(err); got != apperrors.ErrCodeInvalidInput {
		t.Errorf("GetCode(%v) = %s, want %s", err, got, apperrors.ErrCodeInvalidInput)
	}
}

// lineageService fakes the lineage service with a single dataset.
func lineageService(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/lineage/datasets":
			_ = json.NewEncoder(w).Encode([]string{"trades"})
		case r.URL.Path == "/api/lineage" && r.URL.Query().Get("dataset") == "trades":
			_ = json.NewEncoder(w).Encode([]events.Event{{
				ID:        "e1",
				Dataset:   "trades",
				Operation: "load",
				Outputs:   map[string]any{"out": map[string]any{"dataset": "trades"}},
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetchCommand(t *testing.T) {
	cfg := memoryConfig + "\n[lineage]\nbase_url = \"" + lineageService(t) + "\"\n"

	out, err := runCLI(t, cfg, "", "fetch", "--dataset", "trades")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}

	g, err := lineage.UnmarshalGraph([]byte(out))
	if err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	var got []string
	for _, n := range g.Nodes {
		got = append(got, n.ID)
	}
	if strings.Join(got, ",") != "load-e1,dataset-trades" {
		t.Errorf("node ids = %v, want [load-e1 dataset-trades]", got)
	}
}

func TestFetchCommandErrors(t *testing.T) {
	service := memoryConfig + "\n[lineage]\nbase_url = \"" + lineageService(t) + "\"\n"

	tests := []struct {
		name string
		cfg  string
		args []string
		want apperrors.Code
	}{
		{"no service", memoryConfig, []string{"--dataset", "trades"}, apperrors.ErrCodeUnavailable},
		{"no selector", service, nil, apperrors.ErrCodeInvalidInput},
		{"pick with dataset", service, []string{"--pick", "--dataset", "trades"}, apperrors.ErrCodeInvalidInput},
		{"unknown dataset", service, []string{"--dataset", "positions"}, apperrors.ErrCodeNotFound},
		{"invalid run id", service, []string{"--run", "a/b"}, apperrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.cfg, "", append([]string{"fetch"}, tt.args...)...)
			if got := apperrors.GetCode(err); got != tt.want {
				t.Errorf("GetCode(%v) = %s, want %s", err, got, tt.want)
			}
		})
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, memoryConfig, "", "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(out, "lineageflow version "+buildinfo.Version) {
		t.Errorf("--version = %q", out)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"json": []byte("{}"), "dot": []byte("digraph {}")}

	c := New(io.Discard, LogInfo)
	cmd := c.layoutCommand()

	paths, err := writeArtifacts(cmd, filepath.Join(dir, "out.svg"), []string{"json", "dot"}, artifacts)
	if err != nil {
		t.Fatalf("writeArtifacts error: %v", err)
	}
	want := []string{filepath.Join(dir, "out.json"), filepath.Join(dir, "out.dot")}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	for i, p := range want {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if f := []string{"json", "dot"}[i]; string(data) != string(artifacts[f]) {
			t.Errorf("%s = %q, want %q", p, data, artifacts[f])
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"svg", []string{"svg"}},
		{"svg, png ,html", []string{"svg", "png", "html"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := []struct {
		addr, want string
	}{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:9000", "http://0.0.0.0:9000"},
	}
	for _, tt := range tests {
		if got := displayAddr(tt.addr); got != tt.want {
			t.Errorf("displayAddr(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
