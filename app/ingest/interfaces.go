package ingest

import (
	"context"
	"time"
)

// Source captures everything network-specific about a social platform:
// how to invoke its scraping actor, how to read its raw items and how
// to enrich the resulting records. The pipeline itself is source-agnostic.
type Source interface {
	Name() string
	ActorID() string

	Language(prefs UserPrefs) string
	BuildRunInput(refs []string, window Window) map[string]any

	ExpectedType() string
	NativeID(item RawItem) string
	RawTimestamp(item RawItem) string
	MapRecord(item RawItem, userID string, postedAt time.Time) Record

	BuildPrompt(rec Record, prefs UserPrefs) (prompt string, temperature float64)
	ParseReply(reply string) (title string, summary string)
}

type ActorClient interface {
	RunActorSync(ctx context.Context, actorID string, input any) (datasetID string, err error)
	DatasetItems(ctx context.Context, datasetID string) ([]RawItem, error)
}

type ChatClient interface {
	Chat(ctx context.Context, system string, prompt string, temperature float64) (string, error)
}

type RecordStore interface {
	HasRecord(userID, source, nativeID string) (bool, error)
	InsertRecords(records []Record) (int, error)
	UpdateEnrichments(userID, source string, updates []EnrichmentUpdate) (int, error)
}

type RefStore interface {
	GetProfileRefs(userID, source string) ([]string, error)
}
