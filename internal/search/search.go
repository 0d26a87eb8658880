package search

import (
	"context"
	"fmt"
	"net/url"
)

// searchBase is the Naver news search endpoint. The ssc/where/sm parameters
// pin the results to the news tab; query and start are filled per page.
const searchBase = "https://search.naver.com/search.naver?ssc=tab.news.all&where=news&sm=tab_jum"

// PageSize is the number of results Naver returns per page. Start offsets
// step by this amount (1, 11, 21, ...).
const PageSize = 10

// Item is a single scraped headline. Link may be empty when the markup
// carried no usable anchor. Titles are the identity key for deduplication.
type Item struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Provider abstracts anything that can return headlines for a query.
// Implementations may scrape directly, go through a delegated scrape API,
// or serve canned fixtures in tests. The limit parameter caps the number
// of results returned.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Item, error)
}

// BuildURL constructs the paginated search URL for a query.
// Start offsets at or below 1 normalize to 1; anything else passes through.
func BuildURL(query string, start int) string {
	if start < 1 {
		start = 1
	}
	return fmt.Sprintf("%s&query=%s&start=%d", searchBase, url.QueryEscape(query), start)
}
