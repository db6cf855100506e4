package ingest

import (
	"encoding/json"
	"strconv"
)

// RawItem is one source-specific JSON object from an actor dataset.
// The schema is opaque beyond the fields the source adapters pick out,
// so access goes through tolerant path lookups that return zero values
// for anything missing or of an unexpected shape.
type RawItem map[string]any

func (r RawItem) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Str walks the given key path through nested objects and returns the
// string at the end, or "" if any step is missing or not a string.
func (r RawItem) Str(path ...string) string {
	v := r.lookup(path)
	s, _ := v.(string)
	return s
}

// AsString is Str for fields that may arrive as strings or numbers,
// such as numeric post identifiers.
func (r RawItem) AsString(path ...string) string {
	switch v := r.lookup(path).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Int returns the number at the end of the path, or 0. Dataset numbers
// arrive as json.Number when decoded by the actor client, but plain
// float64 and int are accepted too.
func (r RawItem) Int(path ...string) int {
	switch v := r.lookup(path).(type) {
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Map returns the nested object under key, or nil.
func (r RawItem) Map(key string) RawItem {
	switch v := r[key].(type) {
	case map[string]any:
		return RawItem(v)
	case RawItem:
		return v
	}
	return nil
}

// List returns the object elements of the array under key. Non-object
// elements are skipped.
func (r RawItem) List(key string) []RawItem {
	arr, ok := r[key].([]any)
	if !ok {
		return nil
	}

	items := make([]RawItem, 0, len(arr))
	for _, el := range arr {
		switch v := el.(type) {
		case map[string]any:
			items = append(items, RawItem(v))
		case RawItem:
			items = append(items, v)
		}
	}
	return items
}

// FirstStr returns the first non-empty string found along the given
// key paths, in order.
func (r RawItem) FirstStr(paths ...[]string) string {
	for _, path := range paths {
		if s := r.Str(path...); s != "" {
			return s
		}
	}
	return ""
}

func (r RawItem) lookup(path []string) any {
	if len(path) == 0 {
		return nil
	}

	cur := r
	for _, key := range path[:len(path)-1] {
		cur = cur.Map(key)
		if cur == nil {
			return nil
		}
	}
	return cur[path[len(path)-1]]
}
