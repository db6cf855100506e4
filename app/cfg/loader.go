package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/socialpress.db" description:"Path to the SQLite database file"`

	// Application configuration
	UsersDir          string `long:"users-dir" env:"USERS_DIR" default:"./users" description:"Directory containing user configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for ingestion"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Actor service configuration
	ApifyToken       string `long:"apify-token" env:"APIFY_TOKEN" description:"Apify API token (required)" required:"true"`
	ApifyBaseUrl     string `long:"apify-base-url" env:"APIFY_BASE_URL" default:"https://api.apify.com/v2" description:"Apify API base URL"`
	TwitterActor     string `long:"twitter-actor" env:"TWITTER_ACTOR" default:"apidojo~tweet-scraper" description:"Actor id for twitter scraping"`
	FacebookActor    string `long:"facebook-actor" env:"FACEBOOK_ACTOR" default:"apify~facebook-posts-scraper" description:"Actor id for facebook scraping"`
	ActorWaitTimeout int    `long:"actor-wait-timeout" env:"ACTOR_WAIT_TIMEOUT" default:"300" description:"How long to wait for an actor run in seconds"`

	// Ingestion configuration
	LookbackDays         int    `long:"lookback-days" env:"LOOKBACK_DAYS" default:"7" description:"How many days back the ingest window reaches"`
	MaxItems             int    `long:"max-items" env:"MAX_ITEMS" default:"250" description:"Result cap for the twitter search actor"`
	FacebookResultsLimit int    `long:"facebook-results-limit" env:"FACEBOOK_RESULTS_LIMIT" default:"3" description:"Per-page result cap for the facebook actor"`
	ExtraQuery           string `long:"extra-query" env:"EXTRA_QUERY" description:"Extra token appended to twitter search terms (optional)"`
	TwitterDirectTargets bool   `long:"twitter-direct-targets" env:"TWITTER_DIRECT_TARGETS" description:"Pass handles to the twitter actor instead of building search terms"`

	// Enrichment configuration
	OpenAIAPIKey  string `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key; enrichment is skipped when empty (optional)"`
	OpenAIBaseUrl string `long:"openai-base-url" env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" description:"OpenAI API base URL"`
	OpenAIModel   string `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4-turbo" description:"Chat model used for enrichment"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"SocialPress/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		UsersDir:             raw.UsersDir,
		Port:                 raw.Port,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		APIAccessKey:         raw.APIAccessKey,
		ApifyToken:           raw.ApifyToken,
		ApifyBaseUrl:         raw.ApifyBaseUrl,
		TwitterActor:         raw.TwitterActor,
		FacebookActor:        raw.FacebookActor,
		ActorWaitTimeout:     raw.ActorWaitTimeout,
		LookbackDays:         raw.LookbackDays,
		MaxItems:             raw.MaxItems,
		FacebookResultsLimit: raw.FacebookResultsLimit,
		ExtraQuery:           raw.ExtraQuery,
		TwitterDirectTargets: raw.TwitterDirectTargets,
		OpenAIAPIKey:         raw.OpenAIAPIKey,
		OpenAIBaseUrl:        raw.OpenAIBaseUrl,
		OpenAIModel:          raw.OpenAIModel,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
