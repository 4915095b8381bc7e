package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rankchat/rankchat/internal/config"
)

func newSchemaHandler(t *testing.T, entities *stubEntities) http.Handler {
	t.Helper()
	cfg, err := config.Load("rankchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return NewHandler(cfg, Dependencies{Entities: entities})
}

func TestSchemaEndpointListsClients(t *testing.T) {
	h := newSchemaHandler(t, &stubEntities{names: []string{"abc", "efg"}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var body schemaResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body.Table != "reports_master" {
		t.Fatalf("table = %q", body.Table)
	}
	if len(body.Clients) != 2 || body.Clients[0] != "abc" {
		t.Fatalf("clients = %v", body.Clients)
	}
	if body.Schema == "" {
		t.Fatal("schema text missing")
	}
}

func TestSchemaEndpointToleratesEntityFailure(t *testing.T) {
	h := newSchemaHandler(t, &stubEntities{err: errors.New("db down")})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body schemaResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(body.Clients) != 0 {
		t.Fatalf("clients = %v", body.Clients)
	}
}
