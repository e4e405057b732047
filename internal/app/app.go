package app

import (
	"errors"
	"fmt"

	"ragnews/internal/config"
	"ragnews/internal/logger"
	"ragnews/internal/news"
	"ragnews/internal/rss"
	"ragnews/internal/scraper"
	"ragnews/internal/telegram"
)

// Reported conditions a caller may branch on.
var (
	ErrNoURLs     = errors.New("at least one RSS URL is required")
	ErrNoArticles = errors.New("no articles found, check your RSS URLs")
	ErrNotFetched = errors.New("fetch summaries first, then send them")
)

// Session holds the fetched-and-summarized articles between the fetch
// operation and the dispatch operation. The caller owns its lifetime: it is
// created empty, replaced wholesale on each fetch, and read by dispatch.
type Session struct {
	cfg      *config.Config
	Articles []news.Article
}

func NewSession(cfg *config.Config) *Session {
	return &Session{cfg: cfg}
}

// FetchAndSummarize runs one batch: fetch every feed, truncate to the
// article cap, and build RAG-style summaries in arrival order. Any previous
// batch in the session is discarded first.
func (s *Session) FetchAndSummarize(urls []string) error {
	s.Articles = nil

	if len(urls) == 0 {
		return ErrNoURLs
	}

	entries := rss.FetchAll(urls)
	if s.cfg.ScrapeMissing {
		entries = scraper.FillMissingSummaries(entries, s.cfg.ScrapeMaxArticles)
	}
	if len(entries) == 0 {
		return ErrNoArticles
	}

	s.Articles = news.BuildBatch(entries, s.cfg.MaxArticleCount, s.cfg.TopK, s.cfg.SummaryMaxChars)
	logger.Info("fetched and summarized articles", "count", len(s.Articles))
	return nil
}

// SendToTelegram dispatches the session's articles, at most the configured
// message cap, and returns how many the transport accepted. Credentials are
// a precondition: nothing is sent when either is missing.
func (s *Session) SendToTelegram() (int, error) {
	if err := s.cfg.ValidateTelegram(); err != nil {
		return 0, err
	}
	if len(s.Articles) == 0 {
		return 0, ErrNotFetched
	}

	sent := telegram.SendArticles(s.Articles, s.cfg.TelegramToken, s.cfg.TelegramChatID, s.cfg.MaxMessageCount)
	return sent, nil
}

// Preview logs the first n summarized articles so the operator can review
// them before sending.
func (s *Session) Preview(n int) {
	for i, a := range s.Articles {
		if i >= n {
			break
		}
		title := a.Title
		if title == "" {
			title = "Untitled article"
		}
		logger.Info("preview", "number", i+1, "title", title, "published", a.Published)
		logger.Info("preview summary", "number", i+1, "summary", a.Summary)
	}
}

// Run performs one full invocation: fetch and summarize, preview, then
// optionally send. Failures degrade gracefully; nothing aborts the batch.
func Run(cfg *config.Config, urls []string, send bool) error {
	session := NewSession(cfg)

	if err := session.FetchAndSummarize(urls); err != nil {
		logger.Warn(err.Error())
		return err
	}

	session.Preview(2)

	if !send {
		logger.Info("dry run, skipping Telegram dispatch", "articles", len(session.Articles))
		return nil
	}

	sent, err := session.SendToTelegram()
	if err != nil {
		logger.Error("telegram dispatch rejected", "error", err)
		return err
	}

	logger.Info(fmt.Sprintf("sent %d message(s) to Telegram", sent))
	return nil
}
