package conversation

import (
	"context"
	"database/sql"
	"fmt"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping conversation db: %w", err)
	}
	return nil
}

func (r *Repository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT session_id, user_query, system_response, created_at
FROM conversation_history
WHERE session_id = $1
ORDER BY created_at DESC, turn_id DESC
LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.SessionID, &turn.UserQuery, &turn.SystemResponse, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Query orders newest-first to apply the limit; reverse so callers get
	// chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (r *Repository) AppendTurn(ctx context.Context, sessionID, userQuery, systemResponse string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversation_history (session_id, user_query, system_response)
VALUES ($1, $2, $3)`, sessionID, userQuery, systemResponse)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}
