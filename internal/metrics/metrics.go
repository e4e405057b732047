package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedErrors         int64
	EntriesCollected   int64
	ArticlesSummarized int64
	RelatedAnnotations int64
	MessagesSent       int64
	MessagesFailed     int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
}

func (m *Metrics) AddEntriesCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesCollected += int64(n)
}

func (m *Metrics) IncrementArticlesSummarized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSummarized++
}

func (m *Metrics) IncrementRelatedAnnotations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelatedAnnotations++
}

func (m *Metrics) IncrementMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSent++
}

func (m *Metrics) IncrementMessagesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFailed++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feed_errors":                m.FeedErrors,
		"entries_collected":          m.EntriesCollected,
		"articles_summarized":        m.ArticlesSummarized,
		"related_annotations":        m.RelatedAnnotations,
		"messages_sent":              m.MessagesSent,
		"messages_failed":            m.MessagesFailed,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
