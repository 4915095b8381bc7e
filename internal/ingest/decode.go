package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/parquet-go/parquet-go"

	"github.com/rankchat/rankchat/internal/reports"
)

// reportRecord mirrors the columns a report file carries. Optional metrics
// are pointers so missing values survive the round trip as NULLs.
type reportRecord struct {
	ClientName     string `parquet:"client_name"`
	Year           int32  `parquet:"year"`
	Month          string `parquet:"month"`
	MonthID        int32  `parquet:"month_id"`
	Keyword        string `parquet:"keyword"`
	InitialRanking *int64 `parquet:"initial_ranking,optional"`
	CurrentRanking *int64 `parquet:"current_ranking,optional"`
	Change         *int64 `parquet:"change,optional"`
	SearchVolume   *int64 `parquet:"search_volume,optional"`
	MapRankingGBP  *int64 `parquet:"map_ranking_gbp,optional"`
	Location       string `parquet:"location,optional"`
	URL            string `parquet:"url,optional"`
	Difficulty     *int64 `parquet:"difficulty,optional"`
	SearchIntent   string `parquet:"search_intent,optional"`
}

func (r reportRecord) toRow(sourceFile string) reports.Row {
	return reports.Row{
		ClientName:     strings.ToLower(strings.TrimSpace(r.ClientName)),
		Year:           int(r.Year),
		Month:          strings.TrimSpace(r.Month),
		MonthID:        int(r.MonthID),
		Keyword:        strings.TrimSpace(r.Keyword),
		InitialRanking: r.InitialRanking,
		CurrentRanking: r.CurrentRanking,
		Change:         r.Change,
		SearchVolume:   r.SearchVolume,
		MapRankingGBP:  r.MapRankingGBP,
		Location:       strings.TrimSpace(r.Location),
		URL:            strings.TrimSpace(r.URL),
		Difficulty:     r.Difficulty,
		SearchIntent:   strings.TrimSpace(r.SearchIntent),
		SourceFile:     sourceFile,
	}
}

// DecodeParquet reads a whole parquet report file into rows tagged with the
// originating object key.
func DecodeParquet(data []byte, sourceFile string) ([]reports.Row, error) {
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	reader := parquet.NewGenericReader[reportRecord](file)
	defer func() { _ = reader.Close() }()

	total := int(reader.NumRows())
	rows := make([]reports.Row, 0, total)
	buf := make([]reportRecord, 256)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			rows = append(rows, buf[i].toRow(sourceFile))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

// DecodeCSV normalizes a raw report CSV through an in-memory database so
// header order, quoting, and type sniffing are handled uniformly.
func DecodeCSV(ctx context.Context, data []byte, sourceFile string) ([]reports.Row, error) {
	workDir, err := os.MkdirTemp("", "rankchat-csv-")
	if err != nil {
		return nil, fmt.Errorf("create csv temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	localPath := filepath.Join(workDir, "report.csv")
	if err := os.WriteFile(localPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write local csv file: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf(`
SELECT
	CAST(client_name AS VARCHAR),
	CAST(year AS INTEGER),
	CAST(month AS VARCHAR),
	CAST(month_id AS INTEGER),
	CAST(keyword AS VARCHAR),
	CAST(initial_ranking AS BIGINT),
	CAST(current_ranking AS BIGINT),
	CAST(change AS BIGINT),
	CAST(search_volume AS BIGINT),
	CAST(map_ranking_gbp AS BIGINT),
	CAST(location AS VARCHAR),
	CAST(url AS VARCHAR),
	CAST(difficulty AS BIGINT),
	CAST(search_intent AS VARCHAR)
FROM read_csv_auto('%s', header = true)`, strings.ReplaceAll(localPath, "'", "''"))

	dbRows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read csv report: %w", err)
	}
	defer func() { _ = dbRows.Close() }()

	var rows []reports.Row
	for dbRows.Next() {
		var record reportRecord
		var clientName, month, keyword sql.NullString
		var location, url, searchIntent sql.NullString
		var year, monthID sql.NullInt32
		var initial, current, change, volume, mapRank, difficulty sql.NullInt64
		if err := dbRows.Scan(
			&clientName, &year, &month, &monthID, &keyword,
			&initial, &current, &change, &volume, &mapRank,
			&location, &url, &difficulty, &searchIntent,
		); err != nil {
			return nil, fmt.Errorf("scan csv row: %w", err)
		}
		record.ClientName = clientName.String
		record.Year = year.Int32
		record.Month = month.String
		record.MonthID = monthID.Int32
		record.Keyword = keyword.String
		record.InitialRanking = nullableInt(initial)
		record.CurrentRanking = nullableInt(current)
		record.Change = nullableInt(change)
		record.SearchVolume = nullableInt(volume)
		record.MapRankingGBP = nullableInt(mapRank)
		record.Location = location.String
		record.URL = url.String
		record.Difficulty = nullableInt(difficulty)
		record.SearchIntent = searchIntent.String
		rows = append(rows, record.toRow(sourceFile))
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate csv rows: %w", err)
	}
	return rows, nil
}

func nullableInt(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
