package news

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ragnews/internal/cache"
	"ragnews/internal/logger"
	"ragnews/internal/metrics"
	"ragnews/internal/rss"
)

const (
	// DefaultMaxChars is the character budget for one extractive summary.
	DefaultMaxChars = 300
	// DefaultTopK is how many history entries are considered as context.
	DefaultTopK = 3

	// relatedBudget bounds the combined summary + annotation length.
	relatedBudget = 350
	// relatedSeparator joins the base summary and the annotation.
	relatedSeparator = " | "
	relatedPrefix    = "Related to: "
)

// Article is one summarized feed entry. For a freshly fetched entry Summary
// holds the raw body; once an article enters the batch history, Summary holds
// the finalized annotated summary and is what later articles compare against.
type Article struct {
	Title     string
	Link      string
	Summary   string
	Published string
}

var wordRe = regexp.MustCompile(`\w+`)

// sentenceEnd marks a sentence boundary: terminal punctuation followed by
// whitespace. The punctuation stays with the preceding sentence; the split
// consumes the whitespace. This is a textual heuristic, not real sentence
// segmentation, and the truncation math below depends on exactly this rule.
var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

var tokenCache = cache.New()

// Tokenize returns the set of distinct lowercase word tokens in text. Tokens
// are maximal \w+ runs; punctuation and whitespace delimit and are dropped.
func Tokenize(text string) map[string]struct{} {
	key := cache.Key(text)
	if tokens, ok := tokenCache.Get(key); ok {
		return tokens
	}

	tokens := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(text, -1) {
		tokens[strings.ToLower(w)] = struct{}{}
	}
	tokenCache.Set(key, tokens)
	return tokens
}

// Similarity computes the token overlap coefficient between two texts:
// |intersection| / (|A| + |B|), which is 0 when either set is empty and at
// most 0.5 when the sets are equal. The denominator is deliberately the sum
// of both set sizes, not the union.
func Similarity(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0.0
	}

	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(ta)+len(tb))
}

// Summarize reduces a body to its first three sentences, truncated to
// maxChars characters. Truncation cuts at exactly maxChars, strips trailing
// whitespace, then appends "...", so the result may be up to maxChars+3 long.
func Summarize(text string, maxChars int) string {
	if text == "" {
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	sentences := splitSentences(strings.TrimSpace(text))
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	summary := strings.Join(sentences, " ")

	if runes := []rune(summary); len(runes) > maxChars {
		summary = strings.TrimRightFunc(string(runes[:maxChars]), unicode.IsSpace) + "..."
	}
	return summary
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		// loc[0] is the terminal punctuation byte; keep it with the sentence
		sentences = append(sentences, text[start:loc[0]+1])
		start = loc[1]
	}
	return append(sentences, text[start:])
}

type scoredEntry struct {
	sim   float64
	entry Article
}

// BuildRAGSummary summarizes the article and, when sufficiently similar
// earlier entries exist in history, appends a short related-articles
// annotation. History entries carry finalized summaries, so comparison runs
// against the evolving corpus rather than raw feed text.
func BuildRAGSummary(article Article, history []Article, topK, maxChars int) string {
	summary, _ := buildRAGSummary(article, history, topK, maxChars)
	return summary
}

func buildRAGSummary(article Article, history []Article, topK, maxChars int) (string, bool) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	current := article.Title + " " + article.Summary
	scores := make([]scoredEntry, 0, len(history))
	for _, h := range history {
		scores = append(scores, scoredEntry{
			sim:   Similarity(current, h.Title+" "+h.Summary),
			entry: h,
		})
	}

	// Stable sort keeps original history order on ties.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].sim > scores[j].sim
	})
	if len(scores) > topK {
		scores = scores[:topK]
	}

	var context []Article
	for _, s := range scores {
		if s.sim > 0 {
			context = append(context, s.entry)
		}
	}

	base := Summarize(article.Summary, maxChars)
	if len(context) == 0 {
		return base, false
	}

	var titles []string
	for _, c := range context {
		if c.Title != "" {
			titles = append(titles, c.Title)
		}
	}
	if len(titles) == 0 {
		// every similar entry is untitled; an empty annotation adds nothing
		return base, false
	}
	if len(titles) > 2 {
		titles = titles[:2]
	}

	annotation := relatedPrefix + strings.Join(titles, "; ")
	if utf8.RuneCountInString(base)+utf8.RuneCountInString(annotation)+len(relatedSeparator) < relatedBudget {
		return base + relatedSeparator + annotation, true
	}
	return base, false
}

// BuildBatch runs the whole batch pipeline: entries are truncated to
// maxArticles before any summarization, then processed in arrival order.
// Each finalized article is appended to the history used for the entries
// after it, so output depends on entry order.
func BuildBatch(entries []rss.Entry, maxArticles, topK, maxChars int) []Article {
	startTime := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(startTime))
		metrics.Global.SetLastRun()
	}()

	if maxArticles > 0 && len(entries) > maxArticles {
		entries = entries[:maxArticles]
	}

	history := make([]Article, 0, len(entries))
	for _, e := range entries {
		article := Article{
			Title:     e.Title,
			Link:      e.Link,
			Summary:   e.Summary,
			Published: e.Published,
		}

		summary, annotated := buildRAGSummary(article, history, topK, maxChars)
		metrics.Global.IncrementArticlesSummarized()
		if annotated {
			metrics.Global.IncrementRelatedAnnotations()
		}

		article.Summary = summary
		history = append(history, article)
	}

	logger.Info("summarized batch", "articles", len(history))
	return history
}
