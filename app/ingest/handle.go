package ingest

import (
	"net/url"
	"strings"
)

// NormalizeHandle canonicalizes a user-supplied profile reference into
// the bare identifier used in actor queries. Accepts "name", "@name",
// and profile URLs like "https://service/name" or
// "https://service/name/status/123". Empty or whitespace-only input
// normalizes to "" and must be skipped by the caller.
func NormalizeHandle(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		for _, seg := range strings.Split(u.Path, "/") {
			if seg != "" {
				return strings.TrimPrefix(seg, "@")
			}
		}
		return ""
	}

	return strings.TrimPrefix(s, "@")
}
