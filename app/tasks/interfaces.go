package tasks

import (
	"context"

	"github.com/socialpress/socialpress/app/ingest"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the HTTP API to manage background task
// processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, userRepo, pipeline, sources)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewIngestUserTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// PipelineRunner runs the ingestion pipeline for one user and source.
// Implemented by ingest.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, prefs ingest.UserPrefs, src ingest.Source) (ingest.Outcome, error)
}
