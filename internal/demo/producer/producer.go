package producer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rankchat/rankchat/internal/storage"
)

// Service writes synthetic monthly keyword reports into the object store so
// a fresh environment has something for the loader to pick up.
type Service struct {
	cfg       Config
	log       *slog.Logger
	store     storage.ObjectStore
	generator *Generator
}

func NewService(cfg Config, logger *slog.Logger, store storage.ObjectStore) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		cfg:       cfg,
		log:       logger,
		store:     store,
		generator: NewGenerator(cfg.Seed),
	}, nil
}

// Run uploads one parquet report per client per month, newest month first
// being the current one counting backwards.
func (s *Service) Run(ctx context.Context) (int, error) {
	uploaded := 0
	now := time.Now().UTC()

	for _, client := range s.cfg.Clients {
		for offset := 0; offset < s.cfg.Months; offset++ {
			at := time.Date(s.cfg.Year, now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -offset, 0)
			year := at.Year()
			monthID := int(at.Month())

			records := s.generator.MonthlyReport(client, year, monthID, s.cfg.KeywordsPerFile)
			data, err := encodeReport(records)
			if err != nil {
				return uploaded, fmt.Errorf("encode report for %s %d-%02d: %w", client, year, monthID, err)
			}

			fileName := fmt.Sprintf("report-%04d-%02d.parquet", year, monthID)
			key, err := storage.BuildReportFilePath(client, year, at.Month().String(), fileName)
			if err != nil {
				return uploaded, fmt.Errorf("build report path: %w", err)
			}

			if _, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{
				ContentType: "application/octet-stream",
			}); err != nil {
				return uploaded, fmt.Errorf("upload report %q: %w", key, err)
			}
			uploaded++
			s.log.Info("uploaded demo report",
				slog.String("client", client),
				slog.String("key", key),
				slog.Int("keywords", len(records)))
		}
	}
	return uploaded, nil
}

func encodeReport(records []reportRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("records are required")
	}
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[reportRecord](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
