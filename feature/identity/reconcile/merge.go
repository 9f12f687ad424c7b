package reconcile

import (
	"reflect"

	"cern-sync/feature/identity/models"
)

// mergeAccount folds an incoming identity into a staged account clone and
// reports whether anything changed. Email, username and active are compared
// and replaced as a group; the three JSON maps are shallow-merged key by
// key so untouched accounts produce no write at all.
func mergeAccount(account *models.Account, identity models.CanonicalIdentity) bool {
	changed := false

	if account.Email != identity.Email ||
		account.Username != identity.Username ||
		account.Active != identity.Active {
		account.Email = identity.Email
		account.Username = identity.Username
		account.Active = identity.Active
		changed = true
	}

	if mergeMap(&account.Profile, identity.Profile) {
		changed = true
	}
	if mergeMap(&account.Preferences, identity.Preferences) {
		changed = true
	}
	if mergeMap(&account.ExtraData, identity.ExtraData) {
		changed = true
	}
	return changed
}

// mergeMap writes the incoming keys whose values differ from the stored
// ones into dst and reports whether any key differed. A key missing locally
// counts as different even when the incoming value is empty.
func mergeMap(dst *models.JSONMap, incoming map[string]any) bool {
	changed := false
	for key, value := range incoming {
		local, ok := (*dst)[key]
		if ok && reflect.DeepEqual(local, value) {
			continue
		}
		if *dst == nil {
			*dst = models.JSONMap{}
		}
		(*dst)[key] = value
		changed = true
	}
	return changed
}
