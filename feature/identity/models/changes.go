package models

import "time"

// ChangesKey is the extra-data key holding the append-only audit trail of
// identifier changes detected during reconciliation.
const ChangesKey = "changes"

// Audit actions recorded in the changes list.
const (
	ActionUserDataChanged = "userdata_changed"
	ActionPersonIDChanged = "personId_changed"
)

// UserDataChange builds the audit entry appended when an account's
// email/username drifted upstream.
func UserDataChange(date time.Time, previousUsername, previousEmail, newUsername, newEmail string) map[string]any {
	return map[string]any{
		"date":             date.UTC().Format(time.RFC3339),
		"action":           ActionUserDataChanged,
		"previousUsername": previousUsername,
		"previousEmail":    previousEmail,
		"newUsername":      newUsername,
		"newEmail":         newEmail,
	}
}

// PersonIDChange builds the audit entry appended when the external primary
// key linked to an account was corrected.
func PersonIDChange(date time.Time, previousPersonID, newPersonID string) map[string]any {
	return map[string]any{
		"date":               date.UTC().Format(time.RFC3339),
		"action":             ActionPersonIDChanged,
		"previousPrimaryKey": previousPersonID,
		"newPrimaryKey":      newPersonID,
	}
}

// AppendChange appends an audit entry to the account's changes list.
func (a *Account) AppendChange(entry map[string]any) {
	if a.ExtraData == nil {
		a.ExtraData = JSONMap{}
	}
	changes, _ := a.ExtraData[ChangesKey].([]any)
	a.ExtraData[ChangesKey] = append(changes, entry)
}

// Changes returns the account's audit trail, empty when none exists.
func (a *Account) Changes() []any {
	changes, _ := a.ExtraData[ChangesKey].([]any)
	return changes
}
