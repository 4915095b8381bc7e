package reports

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rankchat/rankchat/internal/observability"
)

// Engine runs validated read-only SQL against Postgres. A pooled connection
// is borrowed per call and returned on every exit path; no connection is held
// between calls.
type Engine struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func NewEngine(db *sql.DB, queryTimeout time.Duration) *Engine {
	return &Engine{db: db, queryTimeout: queryTimeout}
}

func (e *Engine) Execute(ctx context.Context, sqlText string) (Result, error) {
	sqlText = strings.TrimSpace(sqlText)
	if sqlText == "" {
		return Result{}, fmt.Errorf("sql is required")
	}

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, fmt.Errorf("scan row: %w", err)
		}
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		resultRows = append(resultRows, record)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	elapsed := time.Since(start)
	observability.ObserveSQLExec(elapsed)

	return Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: elapsed,
	}, nil
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	default:
		return typed
	}
}
