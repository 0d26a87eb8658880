package bypass

import (
	"net/http"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		page       *Page
		wantHit    bool
		wantSource string
	}{
		{
			name:    "clean page",
			page:    &Page{StatusCode: 200, Body: []byte("<html><a class=\"news_tit\">ok</a></html>")},
			wantHit: false,
		},
		{
			name:       "naver captcha on 200",
			page:       &Page{StatusCode: 200, Body: []byte(`<script src="https://captcha.naver.com/v1.js"></script>`)},
			wantHit:    true,
			wantSource: "NaverCaptcha",
		},
		{
			name:       "naver korean captcha text",
			page:       &Page{StatusCode: 200, Body: []byte("로봇이 아닙니다 확인")},
			wantHit:    true,
			wantSource: "NaverCaptcha",
		},
		{
			name: "naver block via server header",
			page: &Page{
				StatusCode: http.StatusForbidden,
				Headers:    map[string][]string{"server": {"NWS/1.2"}},
				Body:       []byte("denied"),
			},
			wantHit:    true,
			wantSource: "NaverBlock",
		},
		{
			name: "naver temporary restriction body",
			page: &Page{
				StatusCode: http.StatusTooManyRequests,
				Body:       []byte("접속이 일시적으로 제한되었습니다"),
			},
			wantHit:    true,
			wantSource: "NaverBlock",
		},
		{
			name: "cloudflare challenge",
			page: &Page{
				StatusCode: http.StatusServiceUnavailable,
				Body:       []byte(`<div id="cf-browser-verification"></div>`),
			},
			wantHit:    true,
			wantSource: "Cloudflare",
		},
		{
			name: "akamai block page",
			page: &Page{
				StatusCode: http.StatusForbidden,
				Body:       []byte("Access Denied. Reference #18.abc"),
			},
			wantHit:    true,
			wantSource: "Akamai",
		},
		{
			name:    "plain 403 without signatures",
			page:    &Page{StatusCode: http.StatusForbidden, Body: []byte("forbidden")},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, source := Analyze(tt.page, DefaultDetectors())
			if hit != tt.wantHit {
				t.Errorf("Analyze() hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && source != tt.wantSource {
				t.Errorf("Analyze() source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}

func TestAnalyze_NilPage(t *testing.T) {
	if hit, _ := Analyze(nil, DefaultDetectors()); hit {
		t.Error("nil page must not be a detection")
	}
}
