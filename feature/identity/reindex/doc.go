// Package reindex notifies a downstream indexer about accounts touched by
// a sync run.
package reindex
