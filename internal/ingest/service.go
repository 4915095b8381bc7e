package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
	"github.com/rankchat/rankchat/internal/storage"
)

// RowInserter persists decoded report rows. Duplicate rows are skipped, so a
// load run is safe to repeat.
type RowInserter interface {
	InsertRows(ctx context.Context, rows []reports.Row) (int, error)
}

// CacheInvalidator drops cached entity names after a load changes the client
// population.
type CacheInvalidator interface {
	Invalidate()
}

type Service struct {
	Store     storage.ObjectStore
	Inserter  RowInserter
	Cache     CacheInvalidator
	Logger    *slog.Logger
	Prefix    string
	BatchSize int
	// LoadedBy is stamped on every inserted row so reports_master records
	// which loader run wrote it.
	LoadedBy string
}

// Summary reports what a load run did.
type Summary struct {
	FilesSeen    int
	FilesLoaded  int
	FilesSkipped int
	RowsDecoded  int
	RowsInserted int
}

// Run walks the report prefix and loads every parquet and CSV file found.
// A file that fails to decode is skipped with a warning; the run continues.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if s.Store == nil || s.Inserter == nil {
		return Summary{}, fmt.Errorf("object store and row inserter are required")
	}
	logger := s.logger()

	objects, err := s.Store.List(ctx, s.Prefix)
	if err != nil {
		return Summary{}, fmt.Errorf("list report files: %w", err)
	}

	var summary Summary
	for _, object := range objects {
		summary.FilesSeen++
		ext := strings.ToLower(path.Ext(object.Key))
		if ext != ".parquet" && ext != ".csv" {
			summary.FilesSkipped++
			continue
		}

		rows, err := s.decodeObject(ctx, object.Key, ext)
		if err != nil {
			summary.FilesSkipped++
			logger.Warn("skipping report file",
				slog.String("key", object.Key),
				slog.String("error", err.Error()))
			continue
		}
		summary.RowsDecoded += len(rows)

		inserted, err := s.insertBatches(ctx, rows)
		if err != nil {
			return summary, fmt.Errorf("insert rows from %q: %w", object.Key, err)
		}
		summary.RowsInserted += inserted
		summary.FilesLoaded++
		observability.AddReportRowsLoaded(inserted)
		logger.Info("report file loaded",
			slog.String("key", object.Key),
			slog.Int("rows_decoded", len(rows)),
			slog.Int("rows_inserted", inserted))
	}

	if summary.RowsInserted > 0 && s.Cache != nil {
		s.Cache.Invalidate()
	}
	return summary, nil
}

func (s *Service) decodeObject(ctx context.Context, key, ext string) ([]reports.Row, error) {
	reader, err := s.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}

	sourceFile := path.Base(key)
	var rows []reports.Row
	if ext == ".parquet" {
		rows, err = DecodeParquet(data, sourceFile)
	} else {
		rows, err = DecodeCSV(ctx, data, sourceFile)
	}
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].LoadedBy = s.LoadedBy
	}
	return rows, nil
}

func (s *Service) insertBatches(ctx context.Context, rows []reports.Row) (int, error) {
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	inserted := 0
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		count, err := s.Inserter.InsertRows(ctx, rows[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += count
	}
	return inserted, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
