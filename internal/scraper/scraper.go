package scraper

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ragnews/internal/logger"
	"ragnews/internal/rss"
)

// maxBodyChars caps extracted page text so a scraped body stays in the same
// ballpark as a feed description.
const maxBodyChars = 1800

var httpClient = &http.Client{Timeout: 15 * time.Second}

// ExtractBody fetches a page and returns its readable paragraph text.
func ExtractBody(url string) (string, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("error loading page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %v", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return "", fmt.Errorf("can't get content")
	}
	return content, nil
}

// extractParagraphs tries the common article containers first and falls back
// to bare paragraphs. Three decent paragraphs are enough for a summary.
func extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article p",
		".content p",
		".post-content p",
		".entry-content p",
		"main p",
		"p",
	}

	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	content := strings.Join(strings.Fields(strings.Join(paragraphs, " ")), " ")
	if runes := []rune(content); len(runes) > maxBodyChars {
		content = string(runes[:maxBodyChars])
	}
	return content
}

// FillMissingSummaries backfills entries whose feed carried neither summary
// nor description by scraping the linked page. At most limit pages are
// fetched per batch; entries that still have no body are left empty.
func FillMissingSummaries(entries []rss.Entry, limit int) []rss.Entry {
	fetched := 0
	for i := range entries {
		if entries[i].Summary != "" || entries[i].Link == "" {
			continue
		}
		if limit > 0 && fetched >= limit {
			break
		}

		fetched++
		body, err := ExtractBody(entries[i].Link)
		if err != nil {
			logger.Warn("can't get content", "url", entries[i].Link, "error", err)
			continue
		}

		entries[i].Summary = body
		logger.Debug("backfilled entry body", "url", entries[i].Link, "chars", len(body))

		// small pause between requests, don't overload sites
		time.Sleep(500 * time.Millisecond)
	}
	return entries
}
