package directory

import "fmt"

// DefaultBaseDN is the subtree holding primary user accounts.
const DefaultBaseDN = "OU=Users,OU=Organic Units,DC=cern,DC=ch"

// DefaultFilter selects primary accounts only.
const DefaultFilter = "(&(objectClass=user)(!(objectClass=computer))(cernAccountType=Primary))"

// DefaultAttributes is the attribute set requested for every entry.
var DefaultAttributes = []string{
	"cn",
	"mail",
	"displayName",
	"givenName",
	"sn",
	"employeeID",
	"uidNumber",
	"gidNumber",
	"division",
	"cernGroup",
	"cernSection",
	"cernInstituteName",
	"cernInstituteAbbreviation",
	"preferredLanguage",
	"postOfficeBox",
	"cernActiveStatus",
}

// Config holds configuration for the LDAP directory source.
type Config struct {
	// URL is the directory server URL, e.g. ldaps://xldap.cern.ch:636.
	URL string `mapstructure:"url" default:""`
	// BindDN and BindPassword authenticate the search connection. Both
	// empty means an anonymous bind.
	BindDN       string `mapstructure:"bind_dn" default:""`
	BindPassword string `mapstructure:"bind_password" default:""`
	// BaseDN is the search base.
	BaseDN string `mapstructure:"base_dn" default:""`
	// Filter overrides the primary-account search filter.
	Filter string `mapstructure:"filter" default:""`
	// PageSize is the paged-search page size.
	PageSize int `mapstructure:"page_size" default:"1000"`
	// TimeoutSeconds bounds dial and search operations.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("directory: url is required")
	}
	return nil
}
