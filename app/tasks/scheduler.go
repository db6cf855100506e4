package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/socialpress/socialpress/app/cfg"
	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/database"
	"github.com/socialpress/socialpress/app/ingest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	userRepo    database.UserRepository
	configCache *config.ConfigCache
	pipeline    PipelineRunner
	sources     []ingest.Source
	interval    time.Duration
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *config.ConfigCache, userRepo database.UserRepository,
	pipeline PipelineRunner, sources []ingest.Source) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		userRepo:    userRepo,
		configCache: configCache,
		pipeline:    pipeline,
		sources:     sources,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueStartupTasks syncs every user configuration into the database.
// Ingestion waits for the first sweep so the user rows and profile refs
// exist before any pipeline run.
func (s *Scheduler) enqueueStartupTasks() {
	userConfigs := s.configCache.GetConfigs()
	if len(userConfigs) == 0 {
		slog.Debug("No user configurations found")
		return
	}

	slog.Debug("Processing user configurations", "count", len(userConfigs))

	for _, userConfig := range userConfigs {
		syncTask := NewSyncUserConfigTask(userConfig.Name, userConfig, s.userRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncUserConfigTask", "user", userConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	userConfigs := s.configCache.GetConfigs()
	if len(userConfigs) == 0 {
		slog.Debug("No user configurations found")
		return
	}

	slog.Debug("Checking user configurations for due ingestion", "count", len(userConfigs))

	for _, userConfig := range userConfigs {
		user, err := s.userRepo.GetUserByName(userConfig.Name)
		if err != nil {
			slog.Warn("Failed to get user from database, skipping", "user", userConfig.Name, "error", err)
			continue
		}
		if user == nil {
			slog.Warn("User not found in database, skipping", "user", userConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if user.LastScrapedAt != nil && now.Sub(*user.LastScrapedAt) < userConfig.Settings.GetScrapeInterval() {
			slog.Debug("User not due for ingestion yet", "user", userConfig.Name, "last_scraped_at", user.LastScrapedAt)
			continue
		}

		ingestTask := NewIngestUserTask(userConfig.Name, user.ID, userConfig, s.pipeline, s.sources, s.userRepo)
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestUserTask", "user", userConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs a task exactly once. A failed ingestion is not retried;
// the user simply becomes due again after its scrape interval.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "user", task.GetUserName(), "error", err)
	}
}
