package reports

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeClientLister struct {
	names []string
	err   error
	calls int
}

func (f *fakeClientLister) ListClients(_ context.Context) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

func TestEntityCacheLoadsOnceWithinTTL(t *testing.T) {
	source := &fakeClientLister{names: []string{"abc", "efg"}}
	cache := NewEntityCache(source, time.Minute)

	for i := 0; i < 3; i++ {
		names, err := cache.Names(context.Background())
		if err != nil {
			t.Fatalf("Names() error = %v", err)
		}
		if len(names) != 2 || names[1] != "efg" {
			t.Fatalf("names = %v", names)
		}
	}
	if source.calls != 1 {
		t.Fatalf("source calls = %d, want 1", source.calls)
	}
}

func TestEntityCacheExpiresAfterTTL(t *testing.T) {
	source := &fakeClientLister{names: []string{"abc"}}
	cache := NewEntityCache(source, time.Minute)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	if _, err := cache.Names(context.Background()); err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.Names(context.Background()); err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("source calls = %d, want 2", source.calls)
	}
}

func TestEntityCacheInvalidateForcesReload(t *testing.T) {
	source := &fakeClientLister{names: []string{"abc"}}
	cache := NewEntityCache(source, time.Hour)

	if _, err := cache.Names(context.Background()); err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	cache.Invalidate()
	if _, err := cache.Names(context.Background()); err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("source calls = %d, want 2", source.calls)
	}
}

func TestEntityCacheServesStaleOnSourceError(t *testing.T) {
	source := &fakeClientLister{names: []string{"abc"}}
	cache := NewEntityCache(source, time.Minute)

	now := time.Unix(1000, 0)
	cache.now = func() time.Time { return now }

	if _, err := cache.Names(context.Background()); err != nil {
		t.Fatalf("Names() error = %v", err)
	}

	source.err = fmt.Errorf("db down")
	now = now.Add(2 * time.Minute)

	names, err := cache.Names(context.Background())
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 1 || names[0] != "abc" {
		t.Fatalf("names = %v", names)
	}
}
