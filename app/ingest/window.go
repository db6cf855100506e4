package ingest

import (
	"fmt"
	"time"
)

// Accepted is a raw item that survived filtering, together with the
// fields the filter already had to extract to decide.
type Accepted struct {
	Item     RawItem
	NativeID string
	PostedAt time.Time
}

type Filterer struct {
	records RecordStore
}

func NewFilterer(records RecordStore) *Filterer {
	return &Filterer{
		records: records,
	}
}

// FilterItems walks the dataset in arrival order and keeps the items
// that fall inside the window and are not yet stored for this user and
// source. Discarded items are tallied per reason, never returned.
func (f *Filterer) FilterItems(userID string, src Source, window Window, items []RawItem) ([]Accepted, Discards, error) {
	accepted := make([]Accepted, 0, len(items))
	discards := Discards{}
	seen := make(map[string]struct{}, len(items))

	expectedType := src.ExpectedType()

	for _, item := range items {
		if isDemoItem(item) {
			discards.Demo++
			continue
		}

		if typ := item.Str("type"); expectedType != "" && typ != "" && typ != expectedType {
			discards.WrongType++
			continue
		}

		nativeID := src.NativeID(item)
		rawTS := src.RawTimestamp(item)
		if nativeID == "" || rawTS == "" {
			discards.Missing++
			continue
		}

		postedAt, err := NormalizeTimestamp(rawTS)
		if err != nil {
			discards.Missing++
			continue
		}

		if !window.Contains(postedAt) {
			discards.OutOfWindow++
			continue
		}

		if _, ok := seen[nativeID]; ok {
			discards.Duplicate++
			continue
		}

		exists, err := f.records.HasRecord(userID, src.Name(), nativeID)
		if err != nil {
			return nil, discards, fmt.Errorf("failed to check for existing record: %w", err)
		}
		if exists {
			discards.Duplicate++
			continue
		}

		seen[nativeID] = struct{}{}
		accepted = append(accepted, Accepted{
			Item:     item,
			NativeID: nativeID,
			PostedAt: postedAt,
		})
	}

	return accepted, discards, nil
}

// isDemoItem detects the stub rows a restricted actor plan emits in
// place of real content. A stub carries only the marker field, or the
// marker plus a type tag, and nothing identifying.
func isDemoItem(item RawItem) bool {
	switch len(item) {
	case 1:
		return item.Has("demo")
	case 2:
		if !item.Has("demo") || !item.Has("type") {
			return false
		}
		return !item.Has("id") && !item.Has("text") && !item.Has("fullText")
	default:
		return false
	}
}
