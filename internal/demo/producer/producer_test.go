package producer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rankchat/rankchat/internal/storage"
)

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	a := NewGenerator(42).MonthlyReport("efg", 2025, 12, 10)
	b := NewGenerator(42).MonthlyReport("efg", 2025, 12, 10)

	if len(a) != 10 || len(b) != 10 {
		t.Fatalf("lens = %d/%d", len(a), len(b))
	}
	for i := range a {
		if a[i].Keyword != b[i].Keyword || *a[i].SearchVolume != *b[i].SearchVolume {
			t.Fatalf("records diverge at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGeneratorRankingsAreConsistent(t *testing.T) {
	records := NewGenerator(7).MonthlyReport("efg", 2025, 12, 50)
	for _, record := range records {
		if record.Month != "December" || record.MonthID != 12 {
			t.Fatalf("month = %s/%d", record.Month, record.MonthID)
		}
		if *record.CurrentRanking < 1 {
			t.Fatalf("current ranking = %d", *record.CurrentRanking)
		}
		if *record.Change != *record.InitialRanking-*record.CurrentRanking {
			t.Fatalf("change %d != %d - %d", *record.Change, *record.InitialRanking, *record.CurrentRanking)
		}
	}
}

type capturingStore struct {
	keys []string
}

func (c *capturingStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	_, _ = io.Copy(io.Discard, body)
	c.keys = append(c.keys, key)
	return storage.ObjectInfo{Key: key}, nil
}

func (c *capturingStore) Get(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (c *capturingStore) Stat(context.Context, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (c *capturingStore) Delete(context.Context, string) error { return nil }

func (c *capturingStore) List(context.Context, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func TestRunUploadsOneFilePerClientMonth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clients = []string{"abc", "efg"}
	cfg.Months = 2
	cfg.KeywordsPerFile = 5
	cfg.Seed = 1

	store := &capturingStore{}
	svc, err := NewService(cfg, nil, store)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	uploaded, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if uploaded != 4 {
		t.Fatalf("uploaded = %d, want 4", uploaded)
	}
	for _, key := range store.keys {
		if !strings.HasSuffix(key, ".parquet") {
			t.Fatalf("key = %q", key)
		}
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	cfg, err := LoadConfigFromEnv(func(key string) (string, bool) {
		values := map[string]string{
			"RANKCHAT_DEMO_CLIENTS":           "ABC, efg",
			"RANKCHAT_DEMO_KEYWORDS_PER_FILE": "10",
			"RANKCHAT_DEMO_MONTHS":            "1",
			"RANKCHAT_DEMO_SEED":              "99",
		}
		v, ok := values[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}
	if len(cfg.Clients) != 2 || cfg.Clients[0] != "abc" {
		t.Fatalf("clients = %v", cfg.Clients)
	}
	if cfg.KeywordsPerFile != 10 || cfg.Months != 1 || cfg.Seed != 99 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigRejectsBadMonths(t *testing.T) {
	_, err := LoadConfigFromEnv(func(key string) (string, bool) {
		if key == "RANKCHAT_DEMO_MONTHS" {
			return "13", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
