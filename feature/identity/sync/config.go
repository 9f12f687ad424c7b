package sync

import "fmt"

// Method names the identity source for a run.
const (
	MethodAuthz = "authz"
	MethodLDAP  = "ldap"
)

// Config holds orchestration settings shared by the CLI and admin API.
type Config struct {
	// Method selects the identity source: authz or ldap.
	Method string `mapstructure:"method" default:"authz"`
	// ReindexURL is the downstream indexer endpoint receiving touched
	// account ids. Empty disables reindex submission.
	ReindexURL string `mapstructure:"reindex_url" default:""`
}

// Validate reports an unknown method.
func (c Config) Validate() error {
	switch c.Method {
	case "", MethodAuthz, MethodLDAP:
		return nil
	}
	return fmt.Errorf("sync: unknown method %q", c.Method)
}
