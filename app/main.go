package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lgavrilov/newspulse/app/api"
	"github.com/lgavrilov/newspulse/app/cfg"
	"github.com/lgavrilov/newspulse/app/classify"
	"github.com/lgavrilov/newspulse/app/content"
	"github.com/lgavrilov/newspulse/app/database"
	"github.com/lgavrilov/newspulse/app/feed"
	"github.com/lgavrilov/newspulse/app/image"
	"github.com/lgavrilov/newspulse/app/ingest"
	"github.com/lgavrilov/newspulse/app/retention"
	"github.com/lgavrilov/newspulse/app/scoring"
	"github.com/lgavrilov/newspulse/app/sources"
	"github.com/lgavrilov/newspulse/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting NewsPulse server", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	keywordConfig := classify.DefaultKeywordConfig()
	if appCfg.KeywordsFile != "" {
		keywordConfig, err = classify.LoadKeywordConfig(appCfg.KeywordsFile)
		if err != nil {
			slog.Error("Failed to load keywords file", "path", appCfg.KeywordsFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded keyword configuration", "path", appCfg.KeywordsFile)
	}

	classifier, err := classify.NewClassifier(keywordConfig.Categories)
	if err != nil {
		slog.Error("Failed to build keyword classifier", "error", err)
		os.Exit(1)
	}
	engine := scoring.NewEngine(classifier, keywordConfig.HighPrioritySources)

	sourceRepo := database.NewSourceRepository(db)
	itemRepo := database.NewItemRepository(db)

	if err := seedSources(context.Background(), appCfg.SourcesFile, sourceRepo); err != nil {
		slog.Error("Failed to seed sources", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	resolver := image.NewResolver(httpClient, appCfg.UserAgent)
	extractor := content.NewExtractor()

	store := ingest.NewSQLStore(db, itemRepo)
	orchestrator := ingest.NewOrchestrator(sourceRepo, store, fetcher, resolver, engine, appCfg.ImageWorkers)
	sweeper := retention.NewSweeper(itemRepo, appCfg.RetentionWindowHours)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(orchestrator, sweeper, itemRepo, extractor, httpClient)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(sourceRepo, itemRepo, orchestrator, sweeper, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("NewsPulse server shutdown complete")
}

// seedSources registers the sources file's definitions in the database.
func seedSources(ctx context.Context, path string, repo *database.SourceRepository) error {
	defs, err := sources.Load(path)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		slog.Info("No sources file found, skipping source registration", "path", path)
		return nil
	}

	registered := 0
	for _, def := range defs {
		id, err := repo.Upsert(ctx, &database.Source{
			Name:     def.Name,
			FeedURL:  def.URL,
			Kind:     def.Kind,
			Category: def.Category,
			Enabled:  *def.Enabled,
		})
		if err != nil {
			slog.Warn("Failed to register source", "name", def.Name, "error", err)
			continue
		}
		slog.Info("Registered source", "name", def.Name, "id", id, "url", def.URL)
		registered++
	}
	slog.Info("Source registration complete", "registered", registered, "total", len(defs))

	return nil
}
