// Package storage provides the object-storage client used for the sync
// report archive.
//
// After every sync run the orchestrator writes the run report as a JSON
// object (reports/<kind>-<run id>.json) so operators can audit past runs.
// Archiving is best-effort and optional: an unconfigured or unreachable
// archive is logged and ignored, it never fails a sync.
package storage
