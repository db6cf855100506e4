package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseableTimestamp is returned when a raw timestamp matches none
// of the supported shapes. Items carrying such timestamps are discarded,
// never guessed from surrounding fields.
var ErrUnparseableTimestamp = errors.New("unparseable timestamp")

// NormalizeTimestamp parses a raw timestamp string into a UTC instant.
// ISO-8601 with 'Z' or a numeric offset is tried first, then a general
// date/time grammar covering shapes like "Fri Nov 24 17:49:36 +0000 2023"
// and "2023-11-24 17:49:36". A value without offset information is
// assumed to already be UTC.
func NormalizeTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrUnparseableTimestamp
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, raw)
	}

	return t.UTC(), nil
}
