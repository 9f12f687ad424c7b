// Package utils provides small shared conversion helpers.
package utils
