package config

// UserConfig represents a single user's provisioning file
type UserConfig struct {
	Name     string       // Derived from filename (without .yml extension)
	Email    string       `yaml:"email"`
	Settings UserSettings `yaml:"settings"`
	Sources  UserSources  `yaml:"sources"`
}

type UserSettings struct {
	Language         string `yaml:"language"`
	FacebookLanguage string `yaml:"facebook_language"`
	ScrapeInterval   int    `yaml:"scrape_interval"` // minutes
}

// UserSources lists the profile references to scrape per source:
// handles or profile URLs for twitter, page URLs for facebook
type UserSources struct {
	Twitter  []string `yaml:"twitter"`
	Facebook []string `yaml:"facebook"`
}

// Refs returns the configured profile references for a source name
func (c *UserConfig) Refs(source string) []string {
	switch source {
	case "twitter":
		return c.Sources.Twitter
	case "facebook":
		return c.Sources.Facebook
	}
	return nil
}
