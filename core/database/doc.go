// Package database manages the connection to the local accounts database.
//
// The database is the persistence engine for synced accounts and roles. This
// package only establishes the gorm connection with sane pool settings and
// timeouts; the account store itself lives in feature/identity/store.
package database
