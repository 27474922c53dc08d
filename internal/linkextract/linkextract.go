// Package linkextract implements the crawler's LinkExtractor capability:
// scanning an HTML document for href-bearing elements and resolving each
// href against the page's canonical URL.
package linkextract

import (
	"bytes"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"falcon-crawler/internal/urlutil"
)

// Extractor scans HTML bodies for outgoing links.
type Extractor interface {
	// Extract returns the resolved, non-empty absolute URLs found in body,
	// in document order, with duplicates preserved.
	Extract(body []byte, base urlutil.Parts) []string
}

// GoqueryExtractor implements Extractor using goquery as a full HTML-parser
// substitute for a regex href scan.
type GoqueryExtractor struct {
	logger *slog.Logger
}

// New constructs a GoqueryExtractor.
func New(logger *slog.Logger) *GoqueryExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoqueryExtractor{logger: logger}
}

// Extract selects every element carrying an href attribute — not just
// anchors — matching "every attribute of the form href=…" rather than
// narrowing to <a> tags. goquery/cascadia selection preserves document
// order, so the result preserves source order.
func (e *GoqueryExtractor) Extract(body []byte, base urlutil.Parts) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Error("link extraction: parse failed", "error", err)
		return nil
	}

	var links []string
	doc.Find("[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		resolved := urlutil.Resolve(base, href)
		if resolved == "" {
			return
		}
		links = append(links, resolved)
	})
	return links
}
