// Package groups syncs external directory groups into local roles.
//
// Groups have no drift handling: the group identifier is treated as stable,
// so one upsert pass per run is enough.
package groups
