// Command tagdock is the CLI for the tagdock daemon. It talks to the
// daemon's HTTP API for intake, record browsing, replacement, tag
// generation, and status reporting.
package main
