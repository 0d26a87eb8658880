package storage

import (
	"context"
	"testing"
	"time"
)

// Ensure Backend stays implementable with a trivial in-memory mock; the
// pipeline tests rely on exactly this pattern.
type mockBackend struct {
	saved []*Headline
}

func (m *mockBackend) Save(ctx context.Context, h *Headline) error { m.saved = append(m.saved, h); return nil }
func (m *mockBackend) Query(ctx context.Context, filter Filter) ([]*Headline, error) {
	return m.saved, nil
}
func (m *mockBackend) Close() error { return nil }

func TestBackendInterface(t *testing.T) {
	var b Backend = &mockBackend{}

	h := &Headline{
		ID:          "abc",
		Query:       "경제",
		Title:       "title",
		Link:        "https://news.example.com/1",
		Page:        1,
		CollectedAt: time.Now(),
	}

	if err := b.Save(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := b.Query(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "title" {
		t.Errorf("unexpected query result: %v", got)
	}
}
