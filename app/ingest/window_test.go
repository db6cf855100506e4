package ingest

import (
	"errors"
	"testing"
	"time"
)

type stubRecordStore struct {
	existing map[string]bool
	err      error
}

func (s *stubRecordStore) HasRecord(userID, source, nativeID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.existing[userID+"/"+source+"/"+nativeID], nil
}

func (s *stubRecordStore) InsertRecords(records []Record) (int, error) {
	return len(records), nil
}

func (s *stubRecordStore) UpdateEnrichments(userID, source string, updates []EnrichmentUpdate) (int, error) {
	return len(updates), nil
}

func testWindow() Window {
	return Window{
		Start: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewWindow(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
	window := NewWindow(now, 7)

	expectedUntil := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	expectedStart := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	if !window.Until.Equal(expectedUntil) {
		t.Errorf("Expected until %v, got %v", expectedUntil, window.Until)
	}
	if !window.Start.Equal(expectedStart) {
		t.Errorf("Expected start %v, got %v", expectedStart, window.Start)
	}
	if window.StartDate() != "2024-01-04" {
		t.Errorf("Expected start date '2024-01-04', got %q", window.StartDate())
	}
	if window.UntilDate() != "2024-01-11" {
		t.Errorf("Expected until date '2024-01-11', got %q", window.UntilDate())
	}
}

func TestWindow_ContainsBoundaries(t *testing.T) {
	window := testWindow()

	// Start is inclusive, until is exclusive.
	if !window.Contains(window.Start) {
		t.Errorf("Expected start boundary to be included")
	}
	if window.Contains(window.Until) {
		t.Errorf("Expected until boundary to be excluded")
	}
	if !window.Contains(window.Until.Add(-time.Second)) {
		t.Errorf("Expected instant just before until to be included")
	}
	if window.Contains(window.Start.Add(-time.Second)) {
		t.Errorf("Expected instant just before start to be excluded")
	}
}

func TestFilterer_WindowCheck(t *testing.T) {
	filterer := NewFilterer(&stubRecordStore{})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"id": "A", "createdAt": "2024-01-10T09:00:00Z", "text": "inside"},
		{"id": "B", "createdAt": "2024-01-11T00:00:00Z", "text": "on the exclusive boundary"},
	}

	accepted, discards, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(accepted) != 1 {
		t.Fatalf("Expected 1 accepted item, got %d", len(accepted))
	}
	if accepted[0].NativeID != "A" {
		t.Errorf("Expected item A to be accepted, got %q", accepted[0].NativeID)
	}
	if discards.OutOfWindow != 1 {
		t.Errorf("Expected 1 out-of-window discard, got %d", discards.OutOfWindow)
	}
}

func TestFilterer_DemoItems(t *testing.T) {
	filterer := NewFilterer(&stubRecordStore{})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"demo": true},
		{"demo": true, "type": "tweet"},
		{"demo": true, "type": "tweet", "id": "1", "createdAt": "2024-01-10T09:00:00Z"},
	}

	accepted, discards, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The first two are stubs regardless of window or dedup state; the
	// third carries an id and is real content.
	if discards.Demo != 2 {
		t.Errorf("Expected 2 demo discards, got %d", discards.Demo)
	}
	if len(accepted) != 1 {
		t.Errorf("Expected 1 accepted item, got %d", len(accepted))
	}
}

func TestFilterer_WrongType(t *testing.T) {
	filterer := NewFilterer(&stubRecordStore{})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"id": "1", "type": "retweet", "createdAt": "2024-01-10T09:00:00Z"},
		{"id": "2", "type": "tweet", "createdAt": "2024-01-10T09:01:00Z"},
		{"id": "3", "createdAt": "2024-01-10T09:02:00Z"},
	}

	accepted, discards, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if discards.WrongType != 1 {
		t.Errorf("Expected 1 wrong-type discard, got %d", discards.WrongType)
	}
	// An absent type tag is not a mismatch.
	if len(accepted) != 2 {
		t.Errorf("Expected 2 accepted items, got %d", len(accepted))
	}
}

func TestFilterer_MissingKeyOrTimestamp(t *testing.T) {
	filterer := NewFilterer(&stubRecordStore{})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"createdAt": "2024-01-10T09:00:00Z", "text": "no id"},
		{"id": "1", "text": "no timestamp"},
		{"id": "2", "createdAt": "not a date"},
	}

	accepted, discards, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if discards.Missing != 3 {
		t.Errorf("Expected 3 missing discards, got %d", discards.Missing)
	}
	if len(accepted) != 0 {
		t.Errorf("Expected no accepted items, got %d", len(accepted))
	}
}

func TestFilterer_Duplicates(t *testing.T) {
	store := &stubRecordStore{
		existing: map[string]bool{
			"user-1/twitter/10": true,
		},
	}
	filterer := NewFilterer(store)
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"id": "10", "createdAt": "2024-01-10T09:00:00Z"},
		{"id": "11", "createdAt": "2024-01-10T09:01:00Z"},
		{"id": "11", "createdAt": "2024-01-10T09:01:00Z"},
	}

	accepted, discards, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// One duplicate against storage, one within the batch.
	if discards.Duplicate != 2 {
		t.Errorf("Expected 2 duplicate discards, got %d", discards.Duplicate)
	}
	if len(accepted) != 1 || accepted[0].NativeID != "11" {
		t.Errorf("Expected only item 11 to be accepted, got %v", accepted)
	}
}

func TestFilterer_PreservesArrivalOrder(t *testing.T) {
	filterer := NewFilterer(&stubRecordStore{})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"id": "3", "createdAt": "2024-01-10T23:00:00Z"},
		{"id": "1", "createdAt": "2024-01-10T01:00:00Z"},
		{"id": "2", "createdAt": "2024-01-10T12:00:00Z"},
	}

	accepted, _, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(accepted) != 3 {
		t.Fatalf("Expected 3 accepted items, got %d", len(accepted))
	}
	for i, expected := range []string{"3", "1", "2"} {
		if accepted[i].NativeID != expected {
			t.Errorf("Expected item %s at position %d, got %s", expected, i, accepted[i].NativeID)
		}
	}
}

func TestFilterer_StoreError(t *testing.T) {
	storeErr := errors.New("connection lost")
	filterer := NewFilterer(&stubRecordStore{err: storeErr})
	src := NewTwitterSource("apidojo/tweet-scraper", 250, "", false)

	items := []RawItem{
		{"id": "1", "createdAt": "2024-01-10T09:00:00Z"},
	}

	_, _, err := filterer.FilterItems("user-1", src, testWindow(), items)
	if err == nil {
		t.Fatalf("Expected error when the existence check fails")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}
