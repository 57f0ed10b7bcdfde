package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"newsdigest/internal/app"
	"newsdigest/internal/cache"
	"newsdigest/internal/config"
	"newsdigest/internal/feed"
	"newsdigest/internal/gemini"
	"newsdigest/internal/logger"
	"newsdigest/internal/metrics"
	"newsdigest/internal/ratelimit"
	"newsdigest/internal/retry"
	"newsdigest/internal/scraper"
	"newsdigest/internal/sources"
	"newsdigest/internal/summarizer"
)

func main() {
	logger.Init()

	sourceList := flag.String("sources", "", "comma-separated subset of sources to process")
	output := flag.String("output", "", "output HTML file path")
	noCache := flag.Bool("no-cache", false, "disable the summary cache")
	batchSize := flag.Int("batch-size", 0, "articles per summarization batch")
	configPath := flag.String("config", "", "path to sources YAML config")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	// CLI overrides on top of the environment.
	if *output != "" {
		cfg.OutputPath = *output
	}
	if *noCache {
		cfg.CacheEnabled = false
	}
	if *batchSize > 0 {
		cfg.BatchSize = *batchSize
	}
	if *configPath != "" {
		cfg.SourcesConfigPath = *configPath
	}

	registry, err := sources.Load(cfg.SourcesConfigPath)
	if err != nil {
		logger.Error("could not load sources config", "error", err)
		os.Exit(1)
	}
	if *sourceList != "" {
		registry = registry.Filter(strings.Split(*sourceList, ","))
	}
	if len(registry) == 0 {
		logger.Error("no sources selected")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	aiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("could not create Gemini client", "error", err)
		os.Exit(1)
	}
	defer aiClient.Close()

	extractor := scraper.NewExtractor(cfg.FetchTimeout)
	fetcher := feed.NewFetcher(extractor, cfg.FetchTimeout)
	limiter := ratelimit.NewLimiter(cfg.MaxLLMRequests)
	sum := summarizer.New(aiClient, limiter, summarizer.Options{
		BatchSize:         cfg.BatchSize,
		ArticleCharBudget: cfg.ArticleCharBudget,
		ChunkDelay:        cfg.BatchDelay,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			MaxDelay:    10 * cfg.RetryDelay,
			Backoff:     true,
		},
	})

	var summaryCache *cache.Cache
	if cfg.CacheEnabled {
		summaryCache = cache.New(cfg.CacheFilePath, cfg.CacheTTLDays)
	}

	application := app.New(cfg, registry, fetcher, sum, summaryCache, limiter)
	if err := application.Run(ctx); err != nil {
		metrics.Global.SetLastError(err.Error())
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
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
		logger.Error("monitoring server stopped", "error", err)
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
	_ = json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
