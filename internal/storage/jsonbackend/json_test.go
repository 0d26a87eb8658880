package jsonbackend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/newshound/internal/storage"
)

func TestJSONBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "headlines.ndjson")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	rows := []*storage.Headline{
		{ID: "j1", Query: "경제", Title: "Title A", Link: "https://news.example.com/1", Page: 1, CollectedAt: now.Add(-2 * time.Hour)},
		{ID: "j2", Query: "경제", Title: "Title B", Page: 11, CollectedAt: now.Add(-1 * time.Hour)},
		{ID: "j3", Query: "날씨", Title: "Title C", Page: 1, CollectedAt: now},
	}
	for _, h := range rows {
		if err := b.Save(ctx, h); err != nil {
			t.Fatalf("Failed to save %s: %v", h.ID, err)
		}
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(all))
	}
	if all[0].ID != "j1" || all[2].ID != "j3" {
		t.Errorf("expected discovery order, got %v", all)
	}

	byQuery, err := b.Query(ctx, storage.Filter{Query: "경제"})
	if err != nil {
		t.Fatalf("Failed to query by query string: %v", err)
	}
	if len(byQuery) != 2 {
		t.Errorf("Expected 2 rows for query filter, got %d", len(byQuery))
	}

	since := now.Add(-90 * time.Minute)
	bySince, err := b.Query(ctx, storage.Filter{Since: &since})
	if err != nil {
		t.Fatalf("Failed to query by since: %v", err)
	}
	if len(bySince) != 2 {
		t.Errorf("Expected 2 rows since cutoff, got %d", len(bySince))
	}

	limited, err := b.Query(ctx, storage.Filter{Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("Failed to query with limit/offset: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "j3" {
		t.Errorf("limit/offset wrong: %v", limited)
	}
}
