// Package identity exposes the users sync over the admin API.
package identity
