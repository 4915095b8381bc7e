package reports

import (
	"context"
	"time"
)

// TableName is the single queryable table. Every generated statement must
// reference it; the validator enforces that.
const TableName = "reports_master"

// Result is a normalized, transport-serializable query result. Rows preserve
// engine order; Columns preserves select-list order so callers can render a
// stable table.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	Duration time.Duration
}

type Executor interface {
	Execute(ctx context.Context, sqlText string) (Result, error)
}

// ClientLister yields the distinct client names stored in reports_master.
type ClientLister interface {
	ListClients(ctx context.Context) ([]string, error)
}

// Row is one keyword report entry as loaded from an uploaded report file.
type Row struct {
	ClientName     string
	Year           int
	Month          string
	MonthID        int
	Keyword        string
	InitialRanking *int64
	CurrentRanking *int64
	Change         *int64
	SearchVolume   *int64
	MapRankingGBP  *int64
	Location       string
	URL            string
	Difficulty     *int64
	SearchIntent   string
	SourceFile     string
	LoadedBy       string
}
