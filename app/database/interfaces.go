package database

import (
	"time"

	"github.com/socialpress/socialpress/app/ingest"
)

type UserRepository interface {
	GetUserByName(name string) (*User, error)
	GetUsers() ([]User, error)
	GetUserCount() (int, error)

	UpsertUser(user User) (string, error)
	UpdateLastScrapedAt(userID string, scrapedAt time.Time) error

	ReplaceProfileRefs(userID, source string, refs []string) error
	GetProfileRefs(userID, source string) ([]string, error)
}

type RecordRepository interface {
	HasRecord(userID, source, nativeID string) (bool, error)
	InsertRecords(records []ingest.Record) (int, error)
	UpdateEnrichments(userID, source string, updates []ingest.EnrichmentUpdate) (int, error)

	GetRecordCount() (int, error)
	GetRecordStats(userID string) (int, int, error)
	GetRecentRecords(userID string, limit int) ([]Record, error)
}
