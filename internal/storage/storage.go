package storage

import (
	"context"
	"time"
)

// Headline is one collected result row. ID is a UUID assigned at
// collection time; Page is the start offset of the results page the
// title was discovered on.
type Headline struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Page        int       `json:"page"`
	CollectedAt time.Time `json:"collected_at"`
}

// Filter narrows Query results. Zero values mean "no constraint".
type Filter struct {
	Query  string
	Since  *time.Time
	Limit  int
	Offset int
}

// Backend stores collected headlines. Save is called once per accepted
// item, in discovery order, so file-based backends double as the
// incremental-append output mode. Query returns rows in discovery order.
type Backend interface {
	Save(ctx context.Context, h *Headline) error
	Query(ctx context.Context, filter Filter) ([]*Headline, error)
	Close() error
}
