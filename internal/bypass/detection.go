package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Page is the raw material a detector inspects: the status, headers and
// body of a fetched search-results page.
type Page struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// Detector examines a fetched page to determine whether the request was
// challenged or blocked rather than answered.
type Detector func(p *Page) (detected bool, source string)

// DefaultDetectors returns the detectors run against every direct fetch.
func DefaultDetectors() []Detector {
	return []Detector{
		detectNaverCaptcha,
		detectNaverBlock,
		detectGenericWAF,
	}
}

// Analyze runs the page through the detectors in order. It returns the
// first detection source, or "" when the page looks like a real response.
func Analyze(p *Page, detectors []Detector) (bool, string) {
	if p == nil {
		return false, ""
	}
	for _, d := range detectors {
		if detected, source := d(p); detected {
			return true, source
		}
	}
	return false, ""
}

func getHeader(headers map[string][]string, key string) string {
	if vals, ok := headers[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	lowerKey := strings.ToLower(key)
	for k, vals := range headers {
		if strings.ToLower(k) == lowerKey && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// detectNaverCaptcha looks for Naver's bot-verification interstitial, which
// is served with a 200 so status alone is not enough.
func detectNaverCaptcha(p *Page) (bool, string) {
	if bytes.Contains(p.Body, []byte("captcha.naver.com")) ||
		bytes.Contains(p.Body, []byte("로봇이 아닙니다")) ||
		bytes.Contains(p.Body, []byte("자동입력 방지")) {
		return true, "NaverCaptcha"
	}
	return false, ""
}

// detectNaverBlock looks for outright denials from Naver's edge.
func detectNaverBlock(p *Page) (bool, string) {
	if p.StatusCode == http.StatusForbidden || p.StatusCode == http.StatusTooManyRequests {
		server := strings.ToLower(getHeader(p.Headers, "Server"))
		if strings.Contains(server, "nws") || strings.Contains(server, "naver") {
			return true, "NaverBlock"
		}
		if bytes.Contains(p.Body, []byte("접속이 일시적으로 제한")) {
			return true, "NaverBlock"
		}
	}
	return false, ""
}

// detectGenericWAF catches challenge pages from CDN-level bot protection.
func detectGenericWAF(p *Page) (bool, string) {
	if p.StatusCode == http.StatusForbidden || p.StatusCode == http.StatusServiceUnavailable {
		if bytes.Contains(p.Body, []byte("cf-browser-verification")) ||
			bytes.Contains(p.Body, []byte("Attention Required! | Cloudflare")) {
			return true, "Cloudflare"
		}
		if bytes.Contains(p.Body, []byte("Access Denied")) && bytes.Contains(p.Body, []byte("Reference #")) {
			return true, "Akamai"
		}
	}
	return false, ""
}
