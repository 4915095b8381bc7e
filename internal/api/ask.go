package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rankchat/rankchat/internal/resolve"
)

type askRequest struct {
	SessionID        string `json:"session_id"`
	Question         string `json:"question"`
	AllowEmptyResult bool   `json:"allow_empty_result"`
	RowLimit         int    `json:"row_limit"`
}

type askResponse struct {
	SessionID string           `json:"session_id"`
	Answer    string           `json:"answer"`
	SQL       string           `json:"sql"`
	Attempts  int              `json:"attempts"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Resolver == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "resolver dependencies are not configured", false, nil)
		return
	}
	if err := requireRole(r, "asker"); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}
	if request.RowLimit < 0 {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_ROW_LIMIT", "row_limit must not be negative", false, nil)
		return
	}

	outcome := deps.Resolver.Resolve(r.Context(), resolve.Request{
		SessionID:        request.SessionID,
		Question:         request.Question,
		AllowEmptyResult: request.AllowEmptyResult,
		RowLimit:         request.RowLimit,
	})
	if !outcome.Success {
		extra := map[string]any{
			"session_id": outcome.SessionID,
			"attempts":   outcome.Attempts,
		}
		if outcome.SQL != "" {
			extra["last_sql"] = outcome.SQL
		}
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "RESOLUTION_FAILED", outcome.ErrorDetail, false, extra)
		return
	}

	rows := outcome.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	columns := outcome.Columns
	if columns == nil {
		columns = []string{}
	}
	writeJSON(w, http.StatusOK, askResponse{
		SessionID: outcome.SessionID,
		Answer:    outcome.Answer,
		SQL:       outcome.SQL,
		Attempts:  outcome.Attempts,
		Columns:   columns,
		Rows:      rows,
	})
}
