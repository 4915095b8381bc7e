package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rankchat/rankchat/internal/config"
	"github.com/rankchat/rankchat/internal/conversation"
)

func newHistoryHandler(t *testing.T, history *stubHistory) http.Handler {
	t.Helper()
	cfg, err := config.Load("rankchat-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return NewHandler(cfg, Dependencies{History: history, HistoryLimit: 3})
}

func TestSessionHistoryReturnsTurns(t *testing.T) {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	history := &stubHistory{turns: []conversation.Turn{
		{SessionID: "sess_abc", UserQuery: "q1", SystemResponse: "a1", CreatedAt: base},
		{SessionID: "sess_abc", UserQuery: "q2", SystemResponse: "a2", CreatedAt: base.Add(time.Minute)},
		{SessionID: "sess_other", UserQuery: "qx", SystemResponse: "ax", CreatedAt: base},
	}}
	h := newHistoryHandler(t, history)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/sess_abc/history", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rr.Code, rr.Body.String())
	}
	var body historyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(body.Turns) != 2 {
		t.Fatalf("turns = %d", len(body.Turns))
	}
	if body.Turns[0].UserQuery != "q1" || body.Turns[1].UserQuery != "q2" {
		t.Fatalf("turns out of order: %+v", body.Turns)
	}
	if history.lastLimit != 3 {
		t.Fatalf("limit = %d, want the configured default", history.lastLimit)
	}
}

func TestSessionHistoryHonorsLimitParam(t *testing.T) {
	history := &stubHistory{}
	h := newHistoryHandler(t, history)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/sess_abc/history?limit=10", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if history.lastLimit != 10 {
		t.Fatalf("limit = %d, want 10", history.lastLimit)
	}
}

func TestSessionHistoryRejectsBadLimit(t *testing.T) {
	h := newHistoryHandler(t, &stubHistory{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/sess_abc/history?limit=zero", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSessionHistoryStoreFailure(t *testing.T) {
	h := newHistoryHandler(t, &stubHistory{recentErr: errors.New("db down")})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/sess_abc/history", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}
