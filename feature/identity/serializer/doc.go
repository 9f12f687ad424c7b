// Package serializer normalizes raw directory records into canonical
// identities.
//
// One serializer exists per source: AuthzSerializer for the REST identity
// service (JSON records) and DirectorySerializer for LDAP-style sources
// (attribute to byte-values records). Both validate the three required
// fields (person id, email, username), lower-case the secondary key, and
// delegate profile/extra-data shaping to injected mapper strategies so
// deployments with custom profile schemas can swap the mapping without
// touching the sync pipeline.
//
// Serialization failures are per-record: the caller receives a
// *ValidationError and decides to skip, the rest of the batch continues.
package serializer
