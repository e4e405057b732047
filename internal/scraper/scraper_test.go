package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ragnews/internal/rss"
)

const pageHTML = `<html><body>
<nav><p>menu</p></nav>
<article>
<p>First paragraph with enough length to be kept by the extractor.</p>
<p>Second paragraph, also long enough to make the cut here.</p>
</article>
</body></html>`

func TestExtractBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()

	body, err := ExtractBody(srv.URL)
	if err != nil {
		t.Fatalf("ExtractBody: %v", err)
	}
	if !strings.Contains(body, "First paragraph") || !strings.Contains(body, "Second paragraph") {
		t.Errorf("paragraph text missing: %q", body)
	}
	if strings.Contains(body, "<p>") {
		t.Errorf("markup leaked into extracted body: %q", body)
	}
}

func TestExtractBodyHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := ExtractBody(srv.URL); err == nil {
		t.Error("expected error for non-200 page")
	}
}

func TestFillMissingSummaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()

	entries := []rss.Entry{
		{Title: "Has body", Summary: "already set"},
		{Title: "Empty body", Link: srv.URL},
		{Title: "No link"},
	}

	got := FillMissingSummaries(entries, 5)

	if got[0].Summary != "already set" {
		t.Errorf("existing summary overwritten: %q", got[0].Summary)
	}
	if !strings.Contains(got[1].Summary, "First paragraph") {
		t.Errorf("empty entry not backfilled: %q", got[1].Summary)
	}
	if got[2].Summary != "" {
		t.Errorf("entry without link should stay empty, got %q", got[2].Summary)
	}
}

func TestFillMissingSummariesLimit(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, pageHTML)
	}))
	defer srv.Close()

	entries := []rss.Entry{
		{Title: "A", Link: srv.URL},
		{Title: "B", Link: srv.URL},
		{Title: "C", Link: srv.URL},
	}

	FillMissingSummaries(entries, 1)
	if hits != 1 {
		t.Errorf("fetched %d pages, want 1 (limit)", hits)
	}
}
