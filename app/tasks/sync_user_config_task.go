package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
)

type SyncUserConfigTask struct {
	Task
	UserConfig *config.UserConfig
	userRepo   database.UserRepository
}

func NewSyncUserConfigTask(userName string, userConfig *config.UserConfig, userRepo database.UserRepository) *SyncUserConfigTask {
	return &SyncUserConfigTask{
		Task:       NewTask(TaskTypeSyncUserConfig, userName),
		UserConfig: userConfig,
		userRepo:   userRepo,
	}
}

func (t *SyncUserConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	userID, err := t.userRepo.UpsertUser(database.User{
		Name:             t.UserConfig.Name,
		Email:            t.UserConfig.Email,
		Language:         t.UserConfig.Settings.Language,
		FacebookLanguage: t.UserConfig.Settings.FacebookLanguage,
		ScrapeInterval:   t.UserConfig.Settings.ScrapeInterval,
	})
	if err != nil {
		slog.Error("Task failed", "type", "SyncUserConfig", "user", t.UserName, "error", err)
		return fmt.Errorf("failed to sync user config to database: %w", err)
	}

	for _, source := range []string{ingest.SourceTwitter, ingest.SourceFacebook} {
		if err := t.userRepo.ReplaceProfileRefs(userID, source, t.UserConfig.Refs(source)); err != nil {
			slog.Error("Task failed", "type", "SyncUserConfig", "user", t.UserName, "error", err)
			return fmt.Errorf("failed to sync %s profile refs: %w", source, err)
		}
	}

	slog.Info("Task completed",
		"type", "SyncUserConfig",
		"user", t.UserName,
		"duration", t.GetDuration())

	return nil
}
