package rss

import (
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"ragnews/internal/logger"
	"ragnews/internal/metrics"
)

// Entry is one normalized feed item. Every field defaults to empty text;
// Published is kept as opaque text and never parsed.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published string
}

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads RSS feeds list from YAML file
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// ParseURLList splits free text into feed URLs, one per line. Lines are
// trimmed and blank lines dropped.
func ParseURLList(text string) []string {
	var urls []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// FetchAll downloads and parses all feeds in the supplied order. A feed that
// fails to fetch or parse is logged and skipped; its entries are simply
// absent from the result.
func FetchAll(urls []string) []Entry {
	parser := gofeed.NewParser()
	var entries []Entry
	successCount := 0

	for _, url := range urls {
		feed, err := parser.ParseURL(url)
		if err != nil {
			logger.Warn("error parsing RSS", "url", url, "error", err)
			metrics.Global.IncrementFeedErrors()
			continue // log error, but don't stop
		}
		for _, item := range feed.Items {
			entries = append(entries, newEntry(item))
		}
		successCount++
		metrics.Global.IncrementFeedsFetched()
		logger.Info("loaded entries", "count", len(feed.Items), "url", url)
	}

	metrics.Global.AddEntriesCollected(len(entries))
	logger.Info("processed RSS feeds", "ok", successCount, "total", len(urls))
	return entries
}

// newEntry applies the field precedence once, at the parsing boundary: the
// body is the feed's summary/description, falling back to the content
// element, falling back to empty text. Markup is reduced to plain text here
// so downstream tokenizing and truncation never see HTML.
func newEntry(item *gofeed.Item) Entry {
	body := item.Description
	if body == "" {
		body = item.Content
	}

	return Entry{
		Title:     cleanText(item.Title),
		Link:      strings.TrimSpace(item.Link),
		Summary:   cleanText(body),
		Published: strings.TrimSpace(item.Published),
	}
}

// cleanText strips any markup and collapses whitespace runs to single
// spaces.
func cleanText(s string) string {
	if strings.Contains(s, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
