// Package server holds configuration for the admin HTTP server.
//
// The admin API exposes sync triggers and the last run report. It is not the
// sync engine itself; periodic invocation is expected to come from an
// external scheduler hitting these endpoints or the CLI.
package server
