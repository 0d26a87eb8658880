// Package extract pulls headline items out of raw search-page HTML.
//
// Naver's results markup changes over time and across rollout cohorts, so
// no single selector is reliable. Extraction runs a prioritized chain of
// strategies and takes the first non-empty result, degrading from the
// current component classes down to a regex scan of the legacy anchors.
package extract

import (
	"net/url"
	"strings"

	"github.com/FranksOps/newshound/internal/search"
)

// Strategy extracts items from one page of raw HTML. A nil or empty
// result means the strategy found nothing and the chain moves on.
type Strategy func(html string) []search.Item

// Default returns the standard strategy chain, most specific first.
func Default() []Strategy {
	return []Strategy{
		FromHeadlineClass,
		FromLegacyAnchor,
		FromRegex,
	}
}

// Chain applies strategies in order and returns the first non-empty
// result. An empty slice means every strategy came up dry.
func Chain(html string, strategies ...Strategy) []search.Item {
	for _, s := range strategies {
		if items := s(html); len(items) > 0 {
			return items
		}
	}
	return nil
}

// garbageTexts are UI chrome strings that show up in the same elements as
// headlines: shortcut links, option toggles, "see more" buttons and the
// site brand itself.
var garbageTexts = []string{
	"바로가기",
	"옵션",
	"더보기",
	"네이버",
	"검색",
}

// isGarbage reports whether a candidate title is known non-article UI
// text. Matching is case-insensitive substring over the trimmed title.
func isGarbage(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return true
	}
	for _, g := range garbageTexts {
		if strings.Contains(t, strings.ToLower(g)) {
			return true
		}
	}
	return false
}

// articleHints are substrings an article URL typically carries. A link
// matching none of them is dropped rather than the whole item.
var articleHints = []string{"news.", "article", "read", "/news"}

// sanitizeLink validates an extracted href. It returns "" for anything
// that is not an absolute http(s) URL, points back at the search host, or
// does not look like an article link.
func sanitizeLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	if strings.EqualFold(u.Host, "search.naver.com") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, hint := range articleHints {
		if strings.Contains(lower, hint) {
			return href
		}
	}
	return ""
}

// accept applies the shared filters and appends the item when it passes.
func accept(items []search.Item, title, href string) []search.Item {
	title = strings.TrimSpace(title)
	if isGarbage(title) {
		return items
	}
	return append(items, search.Item{Title: title, Link: sanitizeLink(href)})
}
