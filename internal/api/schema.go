package api

import (
	"net/http"

	"github.com/rankchat/rankchat/internal/reports"
)

type schemaResponse struct {
	Table   string   `json:"table"`
	Schema  string   `json:"schema"`
	Clients []string `json:"clients"`
}

// handleSchema exposes the prompt-facing table description plus the known
// client names, so UIs can offer autocomplete without a database connection.
func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := requireRole(r, "asker"); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	clients := []string{}
	if deps.Entities != nil {
		names, err := deps.Entities.Names(r.Context())
		if err == nil {
			clients = names
		} else if deps.Logger != nil {
			deps.Logger.WarnContext(r.Context(), "loading client names for schema endpoint failed",
				"error", err.Error())
		}
	}

	writeJSON(w, http.StatusOK, schemaResponse{
		Table:   reports.TableName,
		Schema:  reports.SchemaContext,
		Clients: clients,
	})
}
