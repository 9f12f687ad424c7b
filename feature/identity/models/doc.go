// Package models defines the identity sync data model.
//
// CanonicalIdentity is the normalized form of one external directory record,
// produced by the serializers regardless of which source (AuthZ REST service
// or LDAP-style directory) delivered it. Account is the locally persisted
// counterpart, linked 1:1 to an external person id and carrying three JSON
// columns (profile, preferences, extra data) that are merged incrementally
// by the reconciliation engine.
//
// The extra-data "changes" list is an append-only audit trail: every
// identifier drift detected by reconciliation appends one entry describing
// what changed and when.
package models
