package reports

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository covers the non-freeform access paths to reports_master: the
// entity list used for query correction and the loader's bulk insert.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping reports db: %w", err)
	}
	return nil
}

func (r *Repository) ListClients(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT client_name
FROM reports_master
WHERE client_name IS NOT NULL AND client_name <> ''
ORDER BY client_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	clients := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}
	return clients, nil
}

// InsertRows writes report rows inside one transaction. Duplicate rows for
// the same (client, year, month, keyword, source file) are skipped, so
// re-loading a file is idempotent. Returns the number of rows inserted.
func (r *Repository) InsertRows(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
INSERT INTO reports_master (
	client_name, year, month, month_id, keyword,
	initial_ranking, current_ranking, change, search_volume,
	map_ranking_gbp, location, url, difficulty, search_intent, source_file,
	loaded_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (client_name, year, month, keyword, source_file) DO NOTHING`

	inserted := 0
	for _, row := range rows {
		result, err := tx.ExecContext(ctx, query,
			row.ClientName, row.Year, row.Month, row.MonthID, row.Keyword,
			row.InitialRanking, row.CurrentRanking, row.Change, row.SearchVolume,
			row.MapRankingGBP, nullIfEmpty(row.Location), nullIfEmpty(row.URL),
			row.Difficulty, nullIfEmpty(row.SearchIntent), row.SourceFile,
			nullIfEmpty(row.LoadedBy),
		)
		if err != nil {
			return 0, fmt.Errorf("insert report row: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert report row affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert tx: %w", err)
	}
	return inserted, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
