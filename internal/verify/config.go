package verify

import "time"

// Config holds configuration for a verification run.
type Config struct {
	BaseURL string        // Base URL of the service
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Rounds  int           // How many times each probe is repeated
	Verbose bool          // Log every probe result
}

// Default run configuration.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultTimeout = 30 * time.Second
	DefaultRounds  = 1
)

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Rounds < 1 {
		c.Rounds = DefaultRounds
	}
}

// Stats holds run statistics.
type Stats struct {
	Probes    int
	Requests  int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	P50       time.Duration
	P95       time.Duration
}

// Failure lists what differed for one operational area.
type Failure struct {
	OpAreaID   string
	OpAreaName string
	Problems   []string
}

// Summary is the outcome of Run.
type Summary struct {
	Stats
	Failures []Failure
}
