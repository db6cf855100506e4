package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/socialpress/socialpress/app/config"
	"github.com/socialpress/socialpress/app/ingest"
)

func testUserConfig() *config.UserConfig {
	return &config.UserConfig{
		Name:  "alice",
		Email: "alice@example.com",
		Settings: config.UserSettings{
			Language:         "ru",
			FacebookLanguage: "de",
			ScrapeInterval:   30,
		},
		Sources: config.UserSources{
			Twitter:  []string{"nasa"},
			Facebook: []string{"https://www.facebook.com/nasa"},
		},
	}
}

func testSources() []ingest.Source {
	return []ingest.Source{
		ingest.NewTwitterSource("apidojo~tweet-scraper", 10, "", false),
		ingest.NewFacebookSource("apify~facebook-posts-scraper", 3),
	}
}

func TestIngestUserTask_Execute_RunsAllSources(t *testing.T) {
	repo := &MockUserRepository{}
	pipeline := &MockPipelineRunner{
		outcomes: map[string]ingest.Outcome{
			"twitter":  {Source: "twitter", Stage: ingest.StageDone, Inserted: 3, Enriched: 2},
			"facebook": {Source: "facebook", Stage: ingest.StageDone, Inserted: 1, Enriched: 1},
		},
	}

	task := NewIngestUserTask("alice", "user-1", testUserConfig(), pipeline, testSources(), repo)
	err := task.Execute(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(pipeline.runs) != 2 {
		t.Fatalf("Expected 2 pipeline runs, got %d", len(pipeline.runs))
	}
	if pipeline.runs[0] != "twitter" || pipeline.runs[1] != "facebook" {
		t.Errorf("Expected twitter then facebook, got %v", pipeline.runs)
	}

	prefs := pipeline.prefs[0]
	if prefs.ID != "user-1" {
		t.Errorf("Expected user id user-1, got %s", prefs.ID)
	}
	if prefs.Name != "alice" || prefs.Email != "alice@example.com" {
		t.Errorf("Expected alice's identity, got %s / %s", prefs.Name, prefs.Email)
	}
	if prefs.Language != "ru" || prefs.FacebookLanguage != "de" {
		t.Errorf("Expected language prefs ru/de, got %s/%s", prefs.Language, prefs.FacebookLanguage)
	}

	if repo.lastScrapedCalls != 1 {
		t.Errorf("Expected 1 last scraped update, got %d", repo.lastScrapedCalls)
	}
	if repo.lastScrapedUserID != "user-1" {
		t.Errorf("Expected last scraped update for user-1, got %s", repo.lastScrapedUserID)
	}
}

func TestIngestUserTask_Execute_SourceFailureDoesNotStopOthers(t *testing.T) {
	repo := &MockUserRepository{}
	pipeline := &MockPipelineRunner{
		outcomes: map[string]ingest.Outcome{
			"facebook": {Source: "facebook", Stage: ingest.StageDone, Inserted: 1},
		},
		errs: map[string]error{
			"twitter": errors.New("actor run failed"),
		},
	}

	task := NewIngestUserTask("alice", "user-1", testUserConfig(), pipeline, testSources(), repo)
	err := task.Execute(context.Background())
	if err != nil {
		t.Fatalf("Expected no error despite source failure, got %v", err)
	}

	if len(pipeline.runs) != 2 {
		t.Errorf("Expected both sources to run, got %v", pipeline.runs)
	}
	if repo.lastScrapedCalls != 1 {
		t.Errorf("Expected last scraped update despite failure, got %d calls", repo.lastScrapedCalls)
	}
}

func TestIngestUserTask_Execute_LastScrapedUpdateFailure(t *testing.T) {
	repo := &MockUserRepository{updateErr: errors.New("database gone")}
	pipeline := &MockPipelineRunner{}

	task := NewIngestUserTask("alice", "user-1", testUserConfig(), pipeline, testSources(), repo)
	err := task.Execute(context.Background())
	if err == nil {
		t.Error("Expected error when last scraped update fails")
	}
}

func TestIngestUserTask_Execute_CancelledContext(t *testing.T) {
	repo := &MockUserRepository{}
	pipeline := &MockPipelineRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewIngestUserTask("alice", "user-1", testUserConfig(), pipeline, testSources(), repo)
	err := task.Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	if len(pipeline.runs) != 0 {
		t.Errorf("Expected no pipeline runs, got %v", pipeline.runs)
	}
	if repo.lastScrapedCalls != 0 {
		t.Errorf("Expected no last scraped update, got %d calls", repo.lastScrapedCalls)
	}
}
