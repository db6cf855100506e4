package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/socialpress/socialpress/app/api"
	"github.com/socialpress/socialpress/app/apify"
	"github.com/socialpress/socialpress/app/cfg"
	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
	"github.com/socialpress/socialpress/app/llm"
	"github.com/socialpress/socialpress/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting SocialPress server", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := config.NewConfigCache(appCfg.UsersDir)
	if err := configCache.Run(); err != nil {
		log.Fatalf("Failed to load user configurations: %v", err)
	}
	slog.Info("User configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.UsersDir)

	userRepo := database.NewUserRepository(db)
	recordRepo := database.NewRecordRepository(db)

	actorClient := apify.NewClient(appCfg.ApifyBaseUrl, appCfg.ApifyToken, appCfg.UserAgent,
		time.Duration(appCfg.ActorWaitTimeout)*time.Second)

	var chatClient ingest.ChatClient
	if appCfg.OpenAIAPIKey != "" {
		chatClient = llm.NewClient(appCfg.OpenAIBaseUrl, appCfg.OpenAIAPIKey, appCfg.OpenAIModel, appCfg.UserAgent)
	} else {
		slog.Warn("OpenAI API key not set, enrichment disabled")
	}

	sources := []ingest.Source{
		ingest.NewTwitterSource(appCfg.TwitterActor, appCfg.MaxItems, appCfg.ExtraQuery, appCfg.TwitterDirectTargets),
		ingest.NewFacebookSource(appCfg.FacebookActor, appCfg.FacebookResultsLimit),
	}

	pipeline := ingest.NewPipeline(actorClient, chatClient, recordRepo, userRepo, appCfg.LookbackDays)

	scheduler := tasks.NewScheduler(configCache, userRepo, pipeline, sources)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, userRepo, recordRepo, pipeline, sources, scheduler)
	router := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
