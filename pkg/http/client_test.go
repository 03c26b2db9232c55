package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPostJSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": req["symbol"]})
	}))
	defer srv.Close()

	var resp struct {
		Echo string `json:"echo"`
	}
	err := NewClient().PostJSON(context.Background(), srv.URL, map[string]string{"symbol": "AAPL"}, &resp)
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.Echo != "AAPL" {
		t.Fatalf("response echo = %q, want AAPL", resp.Echo)
	}
}

func TestPostJSONNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not trained", http.StatusConflict)
	}))
	defer srv.Close()

	err := NewClient().PostJSON(context.Background(), srv.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "model not trained") {
		t.Fatalf("error %q missing status or body text", err)
	}
}

func TestPostJSONNilDestDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	if err := NewClient().PostJSON(context.Background(), srv.URL, nil, nil); err != nil {
		t.Fatalf("PostJSON with nil dest: %v", err)
	}
}
