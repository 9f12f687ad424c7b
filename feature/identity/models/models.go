package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CanonicalIdentity is the normalized, source-agnostic representation of one
// external directory record after serialization.
type CanonicalIdentity struct {
	// PersonID is the stable external identifier. Nominally immutable, but
	// occasionally corrected upstream by human intervention.
	PersonID string `json:"person_id"`

	// Email and Username form the secondary key, case-normalized lower-case.
	Email    string `json:"email"`
	Username string `json:"username"`

	// Active reports whether the person is currently active at CERN.
	Active bool `json:"active"`

	// Profile holds named profile attributes (department, group, names,
	// institute, mailbox, ...).
	Profile map[string]any `json:"profile"`

	// Preferences holds user preferences (e.g. locale).
	Preferences map[string]any `json:"preferences"`

	// ExtraData carries provenance and audit fields.
	ExtraData map[string]any `json:"extra_data"`
}

// Account is a locally persisted account linked to one external identity.
type Account struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PersonID string `gorm:"column:person_id;size:64;uniqueIndex" json:"person_id"`
	Email    string `gorm:"size:255;uniqueIndex:idx_accounts_email_username" json:"email"`
	Username string `gorm:"size:255;uniqueIndex:idx_accounts_email_username" json:"username"`
	Active   bool   `json:"active"`

	Profile     JSONMap `gorm:"type:json" json:"profile"`
	Preferences JSONMap `gorm:"type:json" json:"preferences"`
	ExtraData   JSONMap `gorm:"type:json;column:extra_data" json:"extra_data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the accounts table name.
func (Account) TableName() string {
	return "accounts"
}

// Clone returns a deep-enough copy for staging mutations: top-level fields by
// value, the three JSON maps copied one level deep. The changes list is
// copied as a fresh slice so appends never alias the original.
func (a *Account) Clone() *Account {
	clone := *a
	clone.Profile = cloneMap(a.Profile)
	clone.Preferences = cloneMap(a.Preferences)
	clone.ExtraData = cloneMap(a.ExtraData)
	if changes, ok := clone.ExtraData[ChangesKey].([]any); ok {
		clone.ExtraData[ChangesKey] = append([]any{}, changes...)
	}
	return &clone
}

// NewAccount builds a fresh account from an incoming identity, linking its
// primary key and seeding all three JSON columns from the incoming record.
func NewAccount(identity CanonicalIdentity) *Account {
	return &Account{
		PersonID:    identity.PersonID,
		Email:       identity.Email,
		Username:    identity.Username,
		Active:      identity.Active,
		Profile:     cloneMap(identity.Profile),
		Preferences: cloneMap(identity.Preferences),
		ExtraData:   cloneMap(identity.ExtraData),
	}
}

func cloneMap(m map[string]any) JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// JSONMap is a map stored as a JSON column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONMap", value)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}
