package ingest

import (
	"time"
)

// Source names persisted with every record and profile reference.
const (
	SourceTwitter  = "twitter"
	SourceFacebook = "facebook"
)

// UserPrefs carries the per-user settings the pipeline needs for one
// invocation. Read from storage by the caller; never mutated here.
type UserPrefs struct {
	ID               string
	Name             string
	Email            string
	Language         string // ISO code, e.g. "en", "ru"
	FacebookLanguage string // optional per-source override
}

// Record is the persisted unit produced by one accepted raw item.
// Ingestion fields are immutable after insert; Title and Summary are
// set at most once by the enrichment phase.
type Record struct {
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

	Title   string
	Summary string
}

// EnrichmentUpdate carries the generated title/summary for one record,
// keyed by its source-native id within the (user, source) scope.
type EnrichmentUpdate struct {
	NativeID string
	Title    string
	Summary  string
}

// Window is the closed-open UTC interval [Start, Until) used to accept
// or reject items by their normalized timestamp.
type Window struct {
	Start time.Time
	Until time.Time
}

// NewWindow computes the ingest window from "now": Until is tomorrow
// 00:00 UTC (exclusive), Start is lookbackDays calendar days before
// Until, so the window covers lookbackDays days including today.
func NewWindow(now time.Time, lookbackDays int) Window {
	today := now.UTC().Truncate(24 * time.Hour)
	until := today.AddDate(0, 0, 1)

	return Window{
		Start: until.AddDate(0, 0, -lookbackDays),
		Until: until,
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.Until)
}

func (w Window) StartDate() string {
	return w.Start.Format("2006-01-02")
}

func (w Window) UntilDate() string {
	return w.Until.Format("2006-01-02")
}

// Discards counts items rejected by the window/dedup filter, by reason.
type Discards struct {
	Demo        int
	WrongType   int
	Missing     int
	OutOfWindow int
	Duplicate   int
}

func (d Discards) Total() int {
	return d.Demo + d.WrongType + d.Missing + d.OutOfWindow + d.Duplicate
}

// Stage identifies how far one pipeline invocation progressed.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageFetching  Stage = "fetching"
	StageFiltering Stage = "filtering"
	StageInserting Stage = "inserting"
	StageEnriching Stage = "enriching"
	StageDone      Stage = "done"
	StageAborted   Stage = "aborted"
)

// Outcome reports the result of one (user, source) pipeline invocation.
type Outcome struct {
	Source   string
	Stage    Stage
	Fetched  int
	Accepted int
	Inserted int
	Enriched int
	Discards Discards
}
