// Package api defines the transport-facing request and response types
// shared by the daemon's HTTP server and the CLI client, plus the
// conversions from internal domain types.
package api
