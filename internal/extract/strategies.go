package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FranksOps/newshound/internal/search"
)

// headlineClassSelector matches the current Naver news results markup,
// where titles render inside sds-comps text components.
const headlineClassSelector = ".sds-comps-text.sds-comps-text-ellipsis.sds-comps-text-ellipsis-1.sds-comps-text-type-headline1"

// FromHeadlineClass extracts items from the modern component markup. The
// article link lives on an enclosing anchor, or occasionally on an anchor
// nested inside the title element.
func FromHeadlineClass(html string) []search.Item {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []search.Item
	doc.Find(headlineClassSelector).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())

		href, ok := s.Closest("a").Attr("href")
		if !ok {
			href, _ = s.Find("a").First().Attr("href")
		}

		items = accept(items, title, href)
	})
	return items
}

// FromLegacyAnchor extracts items from the pre-2024 markup, where each
// result carried an a.news_tit anchor with the full title in its title
// attribute.
func FromLegacyAnchor(html string) []search.Item {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var items []search.Item
	doc.Find("a.news_tit").Each(func(i int, s *goquery.Selection) {
		title, ok := s.Attr("title")
		if !ok || strings.TrimSpace(title) == "" {
			title = s.Text()
		}
		href, _ := s.Attr("href")

		items = accept(items, title, href)
	})
	return items
}

var legacyAnchorRe = regexp.MustCompile(`(?is)<a\s[^>]*class="[^"]*news_tit[^"]*"[^>]*>(.*?)</a>`)

var (
	titleAttrRe = regexp.MustCompile(`(?i)title="([^"]*)"`)
	hrefAttrRe  = regexp.MustCompile(`(?i)href="([^"]*)"`)
	tagRe       = regexp.MustCompile(`(?s)<[^>]*>`)
)

// FromRegex is the last-resort scan for news_tit anchors, used when the
// HTML is too mangled for a proper parse (delegated scrapes sometimes
// return partially rendered documents).
func FromRegex(html string) []search.Item {
	var items []search.Item
	for _, m := range legacyAnchorRe.FindAllStringSubmatch(html, -1) {
		inner := m[1]
		// Attribute scan is limited to the opening tag; nested markup in
		// the anchor body may carry its own title/href attributes.
		tag := m[0]
		if end := strings.Index(tag, ">"); end >= 0 {
			tag = tag[:end+1]
		}

		title := ""
		if tm := titleAttrRe.FindStringSubmatch(tag); tm != nil {
			title = tm[1]
		}
		if strings.TrimSpace(title) == "" {
			title = tagRe.ReplaceAllString(inner, "")
		}

		href := ""
		if hm := hrefAttrRe.FindStringSubmatch(tag); hm != nil {
			href = hm[1]
		}

		items = accept(items, title, href)
	}
	return items
}
