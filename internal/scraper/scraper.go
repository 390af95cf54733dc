package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoDescription means the page had nothing usable as a summary.
var ErrNoDescription = errors.New("no description found")

// Scraper fetches article pages to recover a summary the feed left empty.
type Scraper struct {
	client    *http.Client
	userAgent string
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Mozilla/5.0 (compatible; aidaily/1.0)",
	}
}

// Describe returns a short description of the page at url: og:description,
// then meta description, then the first body paragraphs.
func (s *Scraper) Describe(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	if d := metaContent(doc); d != "" {
		return d, nil
	}
	if d := leadParagraphs(doc); d != "" {
		return d, nil
	}
	return "", ErrNoDescription
}

func metaContent(doc *goquery.Document) string {
	selectors := []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[name="twitter:description"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

// leadParagraphs joins up to three substantial paragraphs from the first
// selector that yields any.
func leadParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}

	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if len([]rune(text)) > 20 {
				paragraphs = append(paragraphs, text)
			}
			return len(paragraphs) < 3
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, " ")
		}
	}
	return ""
}
