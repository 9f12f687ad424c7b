// Package reconcile matches incoming canonical identities against stored
// accounts and computes the mutations that bring the store in line.
//
// Work is split into a pure planning phase and an apply phase. Planning
// classifies each identity (new, consistent, drifted in either direction,
// or an inconsistency fault), merges the incoming record into a cloned
// account, and validates the staged batch so uniqueness can never break at
// commit time. Apply writes all updates in one transaction before any
// insert runs, which is what lets two accounts with swapped identifiers
// re-link in a single run.
package reconcile
