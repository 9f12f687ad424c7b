// Package directory provides the LDAP source for user identities.
//
// It is the alternative to the authz REST source: one paged search over the
// primary-accounts subtree, no token exchange and no incremental-since
// support. Entries come back as attribute-to-byte-values records consumed
// by the directory serializer.
package directory
