// Package sync orchestrates users sync runs.
//
// One run: fetch all records from the configured source, serialize them
// (skipping per-record validation failures), build and apply a
// reconciliation plan, submit the touched account ids for reindexing, and
// publish a run report. Every log event of a run carries the same run_id.
package sync
