package builtin

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// WebPage is the worked example's destination type: the module's doc
// example of a plain href string transmuting into readable content
// resolves to this.
type WebPage struct {
	URL       string
	Title     string
	Text      string
	WordCount int
}

var webpageFetchClient = &http.Client{Timeout: 10 * time.Second}

// sanitizeHTML strips script, style and boilerplate navigation elements
// before handing the document to readability, mirroring the teacher's
// goquery preprocessing pass.
func sanitizeHTML(htmlStr string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return "", fmt.Errorf("builtin: sanitize html: %w", err)
	}
	doc.Find("script, style, nav, footer, noscript").Remove()
	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("builtin: sanitize html: %w", err)
	}
	return out, nil
}

// ExtractWebPage runs the sanitize-then-readability pipeline against raw
// HTML already fetched from sourceURL.
func ExtractWebPage(sourceURL, htmlStr string) (WebPage, error) {
	sanitized, err := sanitizeHTML(htmlStr)
	if err != nil {
		return WebPage{}, err
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil {
		parsed = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(sanitized), parsed)
	if err != nil {
		return WebPage{}, fmt.Errorf("builtin: extract_webpage: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	return WebPage{
		URL:       sourceURL,
		Title:     article.Title,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

// LoadWebpage fetches value (an href string) and extracts its readable
// content, realizing the registry's doc example that a plain string
// tagged "href" transmutes into a WebPage.
func LoadWebpage(value any) (any, error) {
	href, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("builtin: load_webpage: unsupported input %T", value)
	}

	resp, err := webpageFetchClient.Get(href)
	if err != nil {
		return nil, fmt.Errorf("builtin: load_webpage: fetching %s: %w", href, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("builtin: load_webpage: reading %s: %w", href, err)
	}

	page, err := ExtractWebPage(href, string(body))
	if err != nil {
		return nil, err
	}
	return page, nil
}

// HTMLClean strips scripts, styles and boilerplate from an HTML string and
// returns its readable plain text. If readability cannot make sense of the
// document it falls back to the sanitized markup rather than failing the
// edge outright.
func HTMLClean(value any) (any, error) {
	htmlStr, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("builtin: html_clean: unsupported input %T", value)
	}

	sanitized, err := sanitizeHTML(htmlStr)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(sanitized), &url.URL{})
	if err != nil {
		return strings.TrimSpace(sanitized), nil
	}
	return strings.TrimSpace(article.TextContent), nil
}
