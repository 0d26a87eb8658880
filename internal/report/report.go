// Package report summarizes a collection run for the operator.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"
)

// Summary contains aggregated counters from one collection run.
type Summary struct {
	Query             string        `json:"query"`
	Limit             int           `json:"limit"`
	PagesFetched      int           `json:"pages_fetched"`
	EmptyPages        int           `json:"empty_pages"`
	ItemsCollected    int           `json:"items_collected"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	FilteredOut       int           `json:"filtered_out"`
	RateLimitRetries  int           `json:"rate_limit_retries"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	Duration          time.Duration `json:"duration"`
}

// Finish sets the end time and derived duration.
func (s *Summary) Finish() {
	s.EndTime = time.Now().UTC()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Collection Summary
------------------
Query:         {{.Query}} (limit {{.Limit}})
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Pages:         {{.PagesFetched}} fetched, {{.EmptyPages}} empty
Collected:     {{.ItemsCollected}} unique titles
Skipped:       {{.DuplicatesSkipped}} duplicates, {{.FilteredOut}} filtered
Retries:       {{.RateLimitRetries}} rate-limit retries
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse template: %w", err)
	}
	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}
