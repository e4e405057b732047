package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ragnews/internal/config"
	"ragnews/internal/telegram"
)

const stormFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Weather</title>
<item>
  <title>Storm hits region</title>
  <link>http://example.com/storm-1</link>
  <description>A storm hit the coast today. It caused flooding. Residents evacuated. More rain expected tomorrow.</description>
</item>
<item>
  <title>Storm update</title>
  <link>http://example.com/storm-2</link>
  <description>A storm hit the coast today. It caused flooding. Recovery efforts began.</description>
</item>
</channel>
</rss>`

func testConfig() *config.Config {
	return &config.Config{
		MaxArticleCount: 30,
		MaxMessageCount: 5,
		SummaryMaxChars: 300,
		TopK:            3,
	}
}

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, stormFeedXML)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAndSummarizeEndToEnd(t *testing.T) {
	srv := feedServer(t)
	session := NewSession(testConfig())

	if err := session.FetchAndSummarize([]string{srv.URL}); err != nil {
		t.Fatalf("FetchAndSummarize: %v", err)
	}
	if len(session.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(session.Articles))
	}

	first := session.Articles[0]
	if first.Summary != "A storm hit the coast today. It caused flooding. Residents evacuated." {
		t.Errorf("first summary = %q", first.Summary)
	}

	second := session.Articles[1]
	wantSuffix := " | Related to: Storm hits region"
	if !strings.HasSuffix(second.Summary, wantSuffix) {
		t.Errorf("second summary should reference the first article, got %q", second.Summary)
	}
}

func TestFetchAndSummarizeNoURLs(t *testing.T) {
	session := NewSession(testConfig())

	err := session.FetchAndSummarize(nil)
	if !errors.Is(err, ErrNoURLs) {
		t.Errorf("err = %v, want ErrNoURLs", err)
	}
}

func TestFetchAndSummarizeEmptyResult(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer bad.Close()

	session := NewSession(testConfig())
	err := session.FetchAndSummarize([]string{bad.URL})
	if !errors.Is(err, ErrNoArticles) {
		t.Errorf("err = %v, want ErrNoArticles", err)
	}
	if len(session.Articles) != 0 {
		t.Errorf("failed fetch must leave the session empty, got %d articles", len(session.Articles))
	}
}

func TestFetchReplacesSessionWholesale(t *testing.T) {
	srv := feedServer(t)
	session := NewSession(testConfig())

	if err := session.FetchAndSummarize([]string{srv.URL}); err != nil {
		t.Fatal(err)
	}
	if len(session.Articles) == 0 {
		t.Fatal("first fetch produced nothing")
	}

	// a failed refetch discards the previous batch, it never lingers
	if err := session.FetchAndSummarize(nil); err == nil {
		t.Fatal("expected error")
	}
	if len(session.Articles) != 0 {
		t.Errorf("previous batch survived a failed refetch: %d articles", len(session.Articles))
	}
}

func TestSendToTelegramRequiresCredentials(t *testing.T) {
	srv := feedServer(t)
	session := NewSession(testConfig())
	if err := session.FetchAndSummarize([]string{srv.URL}); err != nil {
		t.Fatal(err)
	}

	if _, err := session.SendToTelegram(); err == nil {
		t.Error("send without credentials must be rejected before any attempt")
	}
}

func TestSendToTelegramRequiresFetchFirst(t *testing.T) {
	cfg := testConfig()
	cfg.TelegramToken = "tok"
	cfg.TelegramChatID = "42"
	session := NewSession(cfg)

	if _, err := session.SendToTelegram(); !errors.Is(err, ErrNotFetched) {
		t.Errorf("err = %v, want ErrNotFetched", err)
	}
}

func TestSendToTelegramDispatches(t *testing.T) {
	srv := feedServer(t)

	var sends int
	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sends++
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer tg.Close()
	orig := telegram.BaseURL
	telegram.BaseURL = tg.URL
	defer func() { telegram.BaseURL = orig }()

	cfg := testConfig()
	cfg.TelegramToken = "tok"
	cfg.TelegramChatID = "42"
	cfg.MaxMessageCount = 1

	session := NewSession(cfg)
	if err := session.FetchAndSummarize([]string{srv.URL}); err != nil {
		t.Fatal(err)
	}

	sent, err := session.SendToTelegram()
	if err != nil {
		t.Fatalf("SendToTelegram: %v", err)
	}
	if sent != 1 || sends != 1 {
		t.Errorf("sent = %d, attempts = %d, want 1/1 (message cap)", sent, sends)
	}
}
