package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	UsersDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Actor service configuration
	ApifyToken       string
	ApifyBaseUrl     string
	TwitterActor     string
	FacebookActor    string
	ActorWaitTimeout int // seconds

	// Ingestion configuration
	LookbackDays         int
	MaxItems             int
	FacebookResultsLimit int
	ExtraQuery           string
	TwitterDirectTargets bool

	// Enrichment configuration
	OpenAIAPIKey  string
	OpenAIBaseUrl string
	OpenAIModel   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
