package footballdata

import "time"

const (
	providerName        = "footballdata"
	authHeader          = "X-Auth-Token"
	defaultBaseURL      = "https://api.football-data.org/v4"
	defaultHTTPTimeout  = 10 * time.Second
	defaultScorersLimit = 10
	maxErrorBody        = 512

	breakerFailures = 5
	breakerInterval = time.Minute
	breakerTimeout  = 30 * time.Second

	headerRequestsAvailable = "X-Requests-Available-Minute"
	headerCounterReset      = "X-RequestCounter-Reset"
)
