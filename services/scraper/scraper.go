// File: services/scraper/scraper.go
package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	// minPageWords drops near-empty pages (cookie banners, redirects).
	minPageWords = 20

	fetchTimeout = 30 * time.Second
	userAgent    = "FuzzyBot/1.0 (+https://fuzionest.com)"
)

type sitemapURLSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// SitemapScraper fetches a sitemap, then scrapes the readable text of every
// page it lists.
type SitemapScraper struct {
	client *http.Client
	logger *zap.Logger
}

// NewSitemapScraper builds a scraper with a bounded HTTP client.
func NewSitemapScraper(logger *zap.Logger) *SitemapScraper {
	return &SitemapScraper{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// ListPages fetches the sitemap and returns the page URLs that share the
// sitemap's host. Off-site entries are dropped.
func (s *SitemapScraper) ListPages(ctx context.Context, sitemapURL string) ([]string, error) {
	base, err := url.Parse(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("parse sitemap url: %w", err)
	}

	body, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer body.Close()

	var set sitemapURLSet
	if err := xml.NewDecoder(body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode sitemap: %w", err)
	}

	pages := make([]string, 0, len(set.URLs))
	for _, entry := range set.URLs {
		loc := strings.TrimSpace(entry.Loc)
		u, err := url.Parse(loc)
		if err != nil || u.Host != base.Host {
			continue
		}
		pages = append(pages, loc)
	}
	s.logger.Info("sitemap parsed",
		zap.String("sitemap", sitemapURL),
		zap.Int("pages", len(pages)))
	return pages, nil
}

// ScrapePage fetches one page and extracts its title and readable text.
// Pages with too little content return (nil, nil).
func (s *SitemapScraper) ScrapePage(ctx context.Context, pageURL string) (*models.ScrapedPage, error) {
	body, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, footer, header, noscript, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	content := cleanText(doc.Find("body").Text())
	words := len(strings.Fields(content))
	if words < minPageWords {
		s.logger.Debug("page skipped, too little content",
			zap.String("url", pageURL),
			zap.Int("words", words))
		return nil, nil
	}

	return &models.ScrapedPage{
		URL:       pageURL,
		Title:     title,
		Content:   content,
		WordCount: words,
	}, nil
}

func (s *SitemapScraper) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// cleanText collapses the whitespace soup left after stripping markup.
func cleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
