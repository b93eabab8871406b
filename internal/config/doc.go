// Package config loads and validates Tagdock's TOML configuration.
//
// It owns defaulting, path expansion, and normalization so the rest of the
// system can rely on absolute paths and sensible limits without re-checking
// them. Prefer Load over hand-assembling a Config outside of tests.
package config
