// Package authz provides the client for the CERN Authorization Service.
//
// Access is token-gated: TokenProvider obtains a bearer token from the
// Keycloak client-credentials endpoint once per sync run. Collection
// resources (identities, groups) are paginated; the Service fetches the
// first page synchronously to learn the total, then retrieves the remaining
// pages concurrently through a bounded worker pool (default cap 3),
// yielding records in completion order.
//
// All requests go through the retrying HTTP client; a page that exhausts
// its retry budget aborts the entire fetch. There is no partial-success
// mode.
package authz
