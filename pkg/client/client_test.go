package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/events"
	"github.com/creditdesk/lineageflow/pkg/httputil"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := New(server.URL, WithHTTPClient(server.Client()), WithRetry(3, time.Millisecond))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "gateway:8081", "ftp://host"} {
		if _, err := New(u); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("New(%q) error = %v, want INVALID_INPUT", u, err)
		}
	}
}

func TestClientDatasets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lineage/datasets" {
			t.Errorf("path = %s, want /api/lineage/datasets", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]string{"cds_trades", "positions"})
	})

	got, err := c.Datasets(context.Background())
	if err != nil {
		t.Fatalf("Datasets() error: %v", err)
	}
	if len(got) != 2 || got[0] != "cds_trades" {
		t.Errorf("Datasets() = %v", got)
	}
}

func TestClientByDataset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lineage" || r.URL.Query().Get("dataset") != "cds_trades" {
			t.Errorf("request = %s, want /api/lineage?dataset=cds_trades", r.URL)
		}
		json.NewEncoder(w).Encode([]events.Event{{ID: "1", Dataset: "cds_trades", Operation: "load"}})
	})

	evs, err := c.ByDataset(context.Background(), "cds_trades")
	if err != nil {
		t.Fatalf("ByDataset() error: %v", err)
	}
	if len(evs) != 1 || evs[0].Operation != "load" {
		t.Errorf("ByDataset() = %+v", evs)
	}
}

func TestClientKeepsLargeNumbers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"1","operation":"book","inputs":{"tradeId":9007199254740993}}]`))
	})

	evs, err := c.ByRun(context.Background(), "run-42")
	if err != nil {
		t.Fatalf("ByRun() error: %v", err)
	}
	if got := evs[0].Inputs["tradeId"]; got != json.Number("9007199254740993") {
		t.Errorf("tradeId = %#v, want json.Number 9007199254740993", got)
	}
}

func TestClientByRun(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lineage/run/run-42" {
			t.Errorf("path = %s, want /api/lineage/run/run-42", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	})

	if _, err := c.ByRun(context.Background(), "run-42"); err != nil {
		t.Fatalf("ByRun() error: %v", err)
	}
	if _, err := c.ByRun(context.Background(), "../etc"); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("ByRun(../etc) error = %v, want INVALID_INPUT", err)
	}
}

func TestClientGraph(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]events.Event{
			{ID: "1", Operation: "load", Outputs: map[string]any{"out": map[string]any{"dataset": "trades"}}},
		})
	})

	g, err := c.Graph(context.Background(), Query{Dataset: "trades"})
	if err != nil {
		t.Fatalf("Graph() error: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("Graph() = %d nodes, %d edges, want 2, 1", g.NodeCount(), g.EdgeCount())
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`["trades"]`))
	})

	got, err := c.Datasets(context.Background())
	if err != nil {
		t.Fatalf("Datasets() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Datasets() = %v", got)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Datasets(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeNetwork) {
		t.Errorf("code = %v, want NETWORK_ERROR", apperrors.GetCode(err))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientNotFound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.ByRun(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("code = %v, want NOT_FOUND", apperrors.GetCode(err))
	}
	if calls.Load() != 1 {
		t.Errorf("404 should not be retried, calls = %d", calls.Load())
	}
}

func TestClientSendsHeaders(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c, _ := New(server.URL, WithHTTPClient(server.Client()), WithHeaders(map[string]string{"Authorization": "Bearer t"}))
	if _, err := c.Datasets(context.Background()); err != nil {
		t.Fatalf("Datasets() error: %v", err)
	}
	if auth != "Bearer t" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer t")
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"dataset", Query{Dataset: "a"}, false},
		{"run", Query{RunID: "r"}, false},
		{"empty", Query{}, true},
		{"both", Query{Dataset: "a", RunID: "r"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		retryAfter string
		wantErr    bool
		wantType   error
		isRetryErr bool
		wantAfter  time.Duration
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: true, wantType: ErrNotFound},
		{name: "429 Too Many Requests", code: 429, retryAfter: "2", wantErr: true, isRetryErr: true, wantAfter: 2 * time.Second},
		{name: "500 Internal Server Error", code: 500, wantErr: true, isRetryErr: true},
		{name: "503 Service Unavailable", code: 503, wantErr: true, isRetryErr: true},
		{name: "400 Bad Request", code: 400, wantErr: true, wantType: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.code, tt.retryAfter)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("checkStatus() should return error")
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantType)
			}
			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.isRetryErr {
				t.Errorf("retryable = %v, want %v", got, tt.isRetryErr)
			}
			if retryErr != nil && retryErr.After != tt.wantAfter {
				t.Errorf("After = %v, want %v", retryErr.After, tt.wantAfter)
			}
		})
	}
}

func TestWithTimeout(t *testing.T) {
	hc := &http.Client{}
	c, err := New("http://gateway:8081", WithHTTPClient(hc), WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.http.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", c.http.Timeout)
	}
	if hc.Timeout != 0 {
		t.Error("WithTimeout should not modify the caller's client")
	}
}
