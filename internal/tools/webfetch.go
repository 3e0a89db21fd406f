package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	webFetchMaxChars    = 4000
	webFetchTimeout     = 30 * time.Second
	webFetchMaxRedirect = 3
	webFetchUserAgent   = "Mozilla/5.0 (compatible; cursor-enhanced-go/1.0)"
)

var multiBlankLines = regexp.MustCompile(`\n{3,}`)

// WebFetchTool fetches a URL and returns its extracted text content (spec
// §4.4 "web_fetch"), grounded on the teacher's web_fetch.go SSRF-guarded
// HTTP client, using bluemonday (this module's HTML-sanitization
// dependency) in place of the teacher's hand-rolled tag-stripping regex
// table for HTML extraction.
type WebFetchTool struct {
	client   *http.Client
	policy   *bluemonday.Policy
	maxChars int
}

// NewWebFetchTool creates a WebFetchTool.
func NewWebFetchTool() *WebFetchTool {
	redirects := 0
	client := &http.Client{
		Timeout: webFetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			redirects++
			if redirects > webFetchMaxRedirect {
				return fmt.Errorf("stopped after %d redirects", webFetchMaxRedirect)
			}
			return checkSSRF(req.URL.String())
		},
	}
	return &WebFetchTool{
		client:   client,
		policy:   bluemonday.StrictPolicy(),
		maxChars: webFetchMaxChars,
	}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }

// Execute fetches params["url"] and returns up to maxChars of extracted text.
func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) *Result {
	rawURL, _ := params["url"].(string)
	if rawURL == "" {
		return ErrorResult(fmt.Errorf("url is required"))
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrorResult(fmt.Errorf("invalid URL: %w", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrorResult(fmt.Errorf("only http and https URLs are supported"))
	}
	if err := checkSSRF(rawURL); err != nil {
		return ErrorResult(fmt.Errorf("SSRF protection: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ErrorResult(err)
	}
	req.Header.Set("User-Agent", webFetchUserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return ErrorResult(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(t.maxChars*4)))
	if err != nil {
		return ErrorResult(err)
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		text = t.policy.Sanitize(string(body))
		text = multiBlankLines.ReplaceAllString(text, "\n\n")
		text = strings.TrimSpace(text)
	} else {
		text = string(body)
	}

	if len(text) > t.maxChars {
		text = text[:t.maxChars]
	}

	return NewResult(text)
}
