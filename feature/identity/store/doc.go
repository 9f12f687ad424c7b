// Package store is the persistence layer for accounts.
//
// The update and insert phases run in separate transactions on purpose:
// every update must be committed before the first insert so that secondary
// identifiers released by drifted accounts are free when a new account
// claims them.
package store
