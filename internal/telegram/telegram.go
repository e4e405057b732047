package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragnews/internal/logger"
	"ragnews/internal/metrics"
	"ragnews/internal/news"
)

// BaseURL is the Telegram API root. Tests point it at a local server.
var BaseURL = "https://api.telegram.org"

// sendTimeout bounds each individual send; a timed-out send is treated as
// failed and the dispatch loop proceeds.
const sendTimeout = 15 * time.Second

// SendMessage sends one text message to a Telegram chat/channel. A single
// attempt, no retries: every failure is terminal for this one message.
func SendMessage(token, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", BaseURL, token)

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %v", err)
	}

	client := &http.Client{Timeout: sendTimeout}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error HTTP request: %v", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// surface the transport's own error text for display
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return nil
}

// SendArticles dispatches up to maxMessages articles as individual messages,
// in list order. Articles beyond the cap are never attempted. A failed send
// is reported and skipped; it neither aborts the loop nor counts toward the
// returned success total.
func SendArticles(articles []news.Article, token, chatID string, maxMessages int) int {
	attempts := len(articles)
	if maxMessages < attempts {
		attempts = maxMessages
	}
	if attempts < 0 {
		attempts = 0
	}

	sent := 0
	for i := 0; i < attempts; i++ {
		text := FormatArticleMessage(articles[i])

		if err := SendMessage(token, chatID, text); err != nil {
			logger.Error("failed to send message", "number", i+1, "error", err)
			metrics.Global.IncrementMessagesFailed()
			continue
		}

		sent++
		metrics.Global.IncrementMessagesSent()
		logger.Debug("message sent", "number", i+1, "title", articles[i].Title)
	}

	logger.Info("telegram dispatch finished", "sent", sent, "attempted", attempts)
	return sent
}

// FormatArticleMessage composes the message body as up to three labeled
// segments joined by blank lines. Empty summary and link segments are
// omitted entirely; a missing title becomes "No title".
func FormatArticleMessage(a news.Article) string {
	title := a.Title
	if title == "" {
		title = "No title"
	}

	parts := []string{"Title: " + title}
	if a.Summary != "" {
		parts = append(parts, "Summary: "+a.Summary)
	}
	if a.Link != "" {
		parts = append(parts, "Link: "+a.Link)
	}

	return strings.Join(parts, "\n\n")
}
