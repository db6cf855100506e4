package database

import (
	"time"
)

// User represents a user record in the database
type User struct {
	ID               string // Database UUID
	Name             string // Configuration user identifier derived from filename
	Email            string
	Language         string // Preferred output language, ISO code
	FacebookLanguage string // Per-source language override
	ScrapeInterval   int    // Minutes between ingestion sweeps
	LastScrapedAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileRef represents one declared scraping target of a user
type ProfileRef struct {
	ID        string
	UserID    string
	Source    string
	Ref       string // Raw handle, mention or URL as configured
	CreatedAt time.Time
}

// Record represents an ingested post record in the database
type Record struct {
	ID              string
	UserID          string
	Source          string
	NativeID        string
	AuthorName      string
	AuthorHandle    string
	Text            string
	Lang            string
	URL             string
	MediaURL        string
	ProfileImageURL string
	Likes           int
	Replies         int
	Reposts         int
	Quotes          int
	PostedAt        time.Time
	Title           string
	Summary         string
	EnrichedAt      *time.Time
	CreatedAt       time.Time
}
