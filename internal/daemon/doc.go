// Package daemon coordinates the long-running tagdock process.
//
// It wires configuration, the record store, the intake coordinator, and
// the tag generator into a single lifecycle with flock-based locking to
// prevent multiple instances, and serves the HTTP API the CLI talks to.
//
// Keep orchestration logic here: pipeline steps live in their own
// packages while the daemon focuses on startup, shutdown, and request
// routing.
package daemon
