package apify

// Run statuses as reported by the platform.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// Run is the subset of the run descriptor this client reads.
type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runResponse struct {
	Data Run `json:"data"`
}

func isTerminal(status string) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}
