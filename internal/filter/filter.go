// Package filter holds the editorial filters applied to candidate
// headlines after extraction: a fixed keyword denylist, query-suffix
// patterns, and a token-overlap near-duplicate check.
package filter

import (
	"regexp"
	"strings"
)

// ExcludeKeywords is the stock denylist of non-news topics. Matched as a
// substring against the title and against the title with spaces and
// hyphens stripped, so spelling variants still hit.
var ExcludeKeywords = []string{
	"1박2일",
	"전통시장",
	"설명회",
	"야구",
	"승진",
	"사과문",
	"채용",
	"날씨",
	"결혼",
	"합격자",
	"시상식",
	"청약",
	"대회",
	"축제",
	"당선작",
	"박람회",
	"수상자",
	"페스티벌",
	"마라톤",
	"캠페인",
	"귀농",
	"귀촌",
	"패션쇼",
	"미술제",
	"결방",
	"문화제",
	"[포토]",
	"음악극",
	"클래식",
}

// querySuffixes are particles that turn a query into a duration phrase
// ("2일간", "2일 동안"); such titles are about elapsed time, not the topic.
var querySuffixes = []string{"간", "동안", "만", "간의", "만의", "만에"}

// TitleFilter rejects a candidate title given the titles already
// collected. Returning true means drop.
type TitleFilter func(title string, existing []string) bool

// ByKeywords rejects titles containing any of the given keywords. A nil
// list uses the stock denylist.
func ByKeywords(keywords []string) TitleFilter {
	if keywords == nil {
		keywords = ExcludeKeywords
	}
	return func(title string, _ []string) bool {
		if title == "" {
			return false
		}
		t := strings.ToLower(title)
		compact := strings.NewReplacer(" ", "", "-", "").Replace(t)
		for _, kw := range keywords {
			k := strings.ToLower(kw)
			if strings.Contains(t, k) || strings.Contains(compact, k) {
				return true
			}
		}
		return false
	}
}

// ByQuerySuffix rejects titles where the query is immediately followed by
// a duration particle, in spaced and compact spellings.
func ByQuerySuffix(query string) TitleFilter {
	q := strings.ToLower(strings.TrimSpace(query))
	qCompact := strings.ReplaceAll(q, " ", "")
	return func(title string, _ []string) bool {
		if title == "" || q == "" {
			return false
		}
		t := strings.ToLower(title)
		for _, suf := range querySuffixes {
			for _, p := range []string{q + suf, q + " " + suf, qCompact + suf} {
				if strings.Contains(t, p) {
					return true
				}
			}
		}
		return false
	}
}

var tokenRe = regexp.MustCompile(`[A-Za-z0-9가-힣]+`)

// tokenize splits a title into lowercase Hangul/Latin/digit runs. Single
// characters carry little signal for overlap and are dropped.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(tok)) >= 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// ByTokenOverlap rejects titles sharing minShared or more tokens with any
// already-collected title. Syndicated articles reword the same headline;
// exact-title dedupe alone lets every rewording through.
func ByTokenOverlap(minShared int) TitleFilter {
	if minShared <= 0 {
		minShared = 3
	}
	return func(title string, existing []string) bool {
		cand := tokenize(title)
		if len(cand) == 0 {
			return false
		}
		for _, prev := range existing {
			shared := 0
			for tok := range tokenize(prev) {
				if _, ok := cand[tok]; ok {
					shared++
					if shared >= minShared {
						return true
					}
				}
			}
		}
		return false
	}
}

// Apply runs the filters in order; the first rejection wins.
func Apply(title string, existing []string, filters ...TitleFilter) bool {
	for _, f := range filters {
		if f(title, existing) {
			return true
		}
	}
	return false
}
