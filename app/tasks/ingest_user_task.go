package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
)

type IngestUserTask struct {
	Task
	UserID     string
	UserConfig *config.UserConfig
	pipeline   PipelineRunner
	sources    []ingest.Source
	userRepo   database.UserRepository
}

func NewIngestUserTask(userName, userID string, userConfig *config.UserConfig, pipeline PipelineRunner, sources []ingest.Source, userRepo database.UserRepository) *IngestUserTask {
	return &IngestUserTask{
		Task:       NewTask(TaskTypeIngestUser, userName),
		UserID:     userID,
		UserConfig: userConfig,
		pipeline:   pipeline,
		sources:    sources,
		userRepo:   userRepo,
	}
}

func (t *IngestUserTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	prefs := ingest.UserPrefs{
		ID:               t.UserID,
		Name:             t.UserConfig.Name,
		Email:            t.UserConfig.Email,
		Language:         t.UserConfig.Settings.Language,
		FacebookLanguage: t.UserConfig.Settings.FacebookLanguage,
	}

	totalInserted := 0
	totalEnriched := 0

	for _, src := range t.sources {
		outcome, err := t.pipeline.Run(ctx, prefs, src)
		if err != nil {
			slog.Error("Ingestion failed", "user", t.UserName, "source", src.Name(), "stage", string(outcome.Stage), "error", err)
			continue
		}

		totalInserted += outcome.Inserted
		totalEnriched += outcome.Enriched
	}

	// The last scraped time advances even when a source fails
	if err := t.userRepo.UpdateLastScrapedAt(t.UserID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last scraped time: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestUser",
		"user", t.UserName,
		"duration", t.GetDuration(),
		"inserted", totalInserted,
		"enriched", totalEnriched)

	return nil
}
