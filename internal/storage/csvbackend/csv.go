// Package csvbackend persists headlines to a CSV file in append mode.
// The header row is written only when the target file is empty, so
// successive runs against the same path never duplicate it.
package csvbackend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/FranksOps/newshound/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order. Kept to title and link so the
// file stays directly consumable as the tool's output artifact.
var headers = []string{"title", "link"}

// New opens (or creates) a CSV file as a storage.Backend.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: open %s: %w", filePath, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: stat: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: flush header: %w", err)
		}
	}

	return &csvBackend{file: f}, nil
}

func (b *csvBackend) Save(ctx context.Context, h *storage.Headline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Make sure we're at the end of the file even after a Query.
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write([]string{h.Title, h.Link}); err != nil {
		return fmt.Errorf("csvbackend: write row: %w", err)
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: flush row: %w", err)
	}
	return nil
}

// Query reads back all rows in file (discovery) order. The CSV carries
// only title and link, so Filter.Query and Filter.Since do not apply;
// Limit and Offset do.
func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Headline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: seek: %w", err)
	}
	defer func() {
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	// Header row
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []*storage.Headline{}, nil
		}
		return nil, fmt.Errorf("csvbackend: read header: %w", err)
	}

	var all []*storage.Headline
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: read row: %w", err)
		}
		if len(record) != len(headers) {
			continue // skip malformed rows
		}
		all = append(all, &storage.Headline{Title: record[0], Link: record[1]})
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return []*storage.Headline{}, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(all) {
		all = all[:filter.Limit]
	}

	return all, nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
