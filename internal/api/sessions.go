package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

type historyTurn struct {
	UserQuery      string    `json:"user_query"`
	SystemResponse string    `json:"system_response"`
	CreatedAt      time.Time `json:"created_at"`
}

type historyResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []historyTurn `json:"turns"`
}

func handleSessionHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "HISTORY_NOT_CONFIGURED", "history dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, "asker"); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	sessionID := strings.TrimSpace(r.PathValue("session"))
	if sessionID == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SESSION_REQUIRED", "session id is required", false, nil)
		return
	}

	limit := deps.HistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", false, nil)
			return
		}
		limit = parsed
	}

	turns, err := deps.History.RecentTurns(r.Context(), sessionID, limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "HISTORY_ERROR", "failed to load conversation history", true, map[string]any{"details": err.Error()})
		return
	}

	response := historyResponse{SessionID: sessionID, Turns: make([]historyTurn, 0, len(turns))}
	for _, turn := range turns {
		response.Turns = append(response.Turns, historyTurn{
			UserQuery:      turn.UserQuery,
			SystemResponse: turn.SystemResponse,
			CreatedAt:      turn.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, response)
}
