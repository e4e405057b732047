package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"

	"ragnews/internal/app"
	"ragnews/internal/config"
	"ragnews/internal/logger"
	"ragnews/internal/metrics"
	"ragnews/internal/rss"
	"ragnews/internal/scheduler"
)

func main() {
	logger.Init()

	feedsPath := flag.String("feeds", "", "path to feeds YAML file (default: FEEDS_CONFIG_PATH)")
	urlsPath := flag.String("urls", "", "path to a plain text file with one feed URL per line")
	maxArticles := flag.Int("max-articles", 0, "max articles to summarize per batch (1-200)")
	maxMessages := flag.Int("max-messages", 0, "max messages to send to Telegram (1-20)")
	send := flag.Bool("send", false, "send summaries to Telegram after fetching")
	every := flag.String("every", "", "run daily at HH:MM instead of once")
	flag.Parse()

	cfg := config.Load()
	if *feedsPath != "" {
		cfg.FeedsConfigPath = *feedsPath
	}
	if *maxArticles != 0 {
		cfg.SetMaxArticleCount(*maxArticles)
	}
	if *maxMessages != 0 {
		cfg.SetMaxMessageCount(*maxMessages)
	}

	urls, err := loadURLs(cfg, *urlsPath, flag.Args())
	if err != nil {
		logger.Error("failed to load feed URLs", "error", err)
		os.Exit(1)
	}

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	if *every != "" {
		runScheduled(cfg, urls, *send, *every)
		return
	}

	if err := app.Run(cfg, urls, *send); err != nil {
		os.Exit(1)
	}
}

// loadURLs resolves the feed list: explicit URL arguments win, then a plain
// text URL file, then the YAML feeds config.
func loadURLs(cfg *config.Config, urlsPath string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	if urlsPath != "" {
		data, err := os.ReadFile(urlsPath)
		if err != nil {
			return nil, err
		}
		return rss.ParseURLList(string(data)), nil
	}

	return rss.LoadFeeds(cfg.FeedsConfigPath)
}

func runScheduled(cfg *config.Config, urls []string, send bool, at string) {
	sched := scheduler.New()
	err := sched.ScheduleDaily(at, func() {
		if err := app.Run(cfg, urls, send); err != nil {
			metrics.Global.SetError(err.Error())
		}
	})
	if err != nil {
		logger.Error("failed to schedule daily run", "error", err)
		os.Exit(1)
	}

	logger.Info("scheduled daily run", "at", at)
	sched.Start()
	select {} // block forever; the scheduler owns the process
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
