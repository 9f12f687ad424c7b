package sync

import (
	"time"

	"cern-sync/feature/identity/reconcile"
)

// Report summarizes one sync run.
type Report struct {
	RunID      string            `json:"run_id"`
	Kind       string            `json:"kind"`
	Method     string            `json:"method"`
	Since      string            `json:"since,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	ElapsedMs  int64             `json:"elapsed_ms"`
	Fetched    int               `json:"fetched"`
	Serialized int               `json:"serialized"`
	Skipped    int               `json:"skipped"`
	Updated    int               `json:"updated"`
	Inserted   int               `json:"inserted"`
	Outcomes   reconcile.Summary `json:"outcomes"`
}
