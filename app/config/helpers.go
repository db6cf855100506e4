package config

import (
	"time"
)

// GetScrapeInterval returns the scrape interval as time.Duration
func (s *UserSettings) GetScrapeInterval() time.Duration {
	if s.ScrapeInterval <= 0 {
		return 60 * time.Minute // default 1 hour
	}
	return time.Duration(s.ScrapeInterval) * time.Minute
}
