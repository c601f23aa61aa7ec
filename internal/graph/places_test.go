package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func graphServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.Client(), srv.URL, "neo4j", "neo4j", "secret")
	return srv, client
}

func TestPlaceExists(t *testing.T) {
	t.Run("existing place", func(t *testing.T) {
		_, client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/db/neo4j/tx/commit" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "neo4j" || pass != "secret" {
				t.Errorf("expected basic auth neo4j/secret, got %s/%s", user, pass)
			}
			var req struct {
				Statements []struct {
					Statement  string                 `json:"statement"`
					Parameters map[string]interface{} `json:"parameters"`
				} `json:"statements"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if len(req.Statements) != 1 || req.Statements[0].Parameters["place_id"] != "hotel-1" {
				t.Errorf("unexpected statements %+v", req.Statements)
			}
			if !strings.Contains(req.Statements[0].Statement, "MATCH (p:Place") {
				t.Errorf("unexpected cypher %q", req.Statements[0].Statement)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [{"data": [{"row": ["hotel-1"]}]}], "errors": []}`))
		})

		exists, err := client.PlaceExists(context.Background(), "hotel-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Fatal("expected the place to exist")
		}
	})

	t.Run("missing place", func(t *testing.T) {
		_, client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [{"data": []}], "errors": []}`))
		})

		exists, err := client.PlaceExists(context.Background(), "nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Fatal("expected the place to be missing")
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		_, client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		if _, err := client.PlaceExists(context.Background(), "hotel-1"); err == nil {
			t.Fatal("expected an error for a 503 response")
		}
	})

	t.Run("cypher errors surface", func(t *testing.T) {
		_, client := graphServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"results": [], "errors": [{"code": "Neo.ClientError.Statement.SyntaxError", "message": "bad cypher"}]}`))
		})

		_, err := client.PlaceExists(context.Background(), "hotel-1")
		if err == nil {
			t.Fatal("expected an error when the graph store reports one")
		}
		if !strings.Contains(err.Error(), "SyntaxError") {
			t.Fatalf("expected the error code in the message, got %v", err)
		}
	})

	t.Run("unreachable store is an error", func(t *testing.T) {
		client := NewClient(nil, "http://127.0.0.1:1", "neo4j", "neo4j", "secret")

		if _, err := client.PlaceExists(context.Background(), "hotel-1"); err == nil {
			t.Fatal("expected an error when the graph store is unreachable")
		}
	})
}
