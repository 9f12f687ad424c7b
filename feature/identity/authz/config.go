package authz

import "fmt"

// Config holds configuration for the AuthZ directory service path.
type Config struct {
	// BaseURL is the AuthZ API base URL.
	BaseURL string `mapstructure:"base_url" default:""`
	// KeycloakBaseURL is the base URL of the Keycloak instance issuing
	// API-access tokens.
	KeycloakBaseURL string `mapstructure:"keycloak_base_url" default:""`
	// ClientID is the client-credentials client id.
	ClientID string `mapstructure:"client_id" default:""`
	// ClientSecret is the client-credentials client secret.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// Limit is the page size for collection requests.
	Limit int `mapstructure:"limit" default:"1000"`
	// MaxWorkers caps the page-fetch worker pool.
	MaxWorkers int `mapstructure:"max_workers" default:"3"`
}

// Validate reports missing required settings. It is called before any I/O;
// a failure here is fatal to the run.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("authz: base_url is required")
	}
	if c.KeycloakBaseURL == "" {
		return fmt.Errorf("authz: keycloak_base_url is required")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("authz: client_id and client_secret are required")
	}
	return nil
}
