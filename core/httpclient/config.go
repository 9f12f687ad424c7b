package httpclient

// Config holds configuration for the retrying HTTP client.
type Config struct {
	// Attempts is the fixed retry budget per request.
	Attempts int `mapstructure:"attempts" default:"3"`
	// DelaySeconds is the fixed delay between attempts.
	DelaySeconds int `mapstructure:"delay_seconds" default:"5"`
	// TimeoutSeconds is the per-attempt request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
