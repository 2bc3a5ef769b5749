package config

const (
	// DefaultDatabasePath is the default path for the local sessions/activity database
	DefaultDatabasePath = "./wordbook-ui.db"

	// DefaultAPIBaseURL is where the wordbook backend listens in a stock install
	DefaultAPIBaseURL = "http://localhost:8000"

	DefaultAPITimeout = "15s"
)
