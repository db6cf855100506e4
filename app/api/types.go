package api

import (
	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
	"github.com/socialpress/socialpress/app/tasks"
)

type Handler struct {
	userRepo    database.UserRepository
	recordRepo  database.RecordRepository
	configCache *config.ConfigCache
	pipeline    tasks.PipelineRunner
	sources     []ingest.Source
	scheduler   tasks.TaskSchedulerInterface
}
