// Package records persists per-tag document records in SQLite.
//
// A document is one tag identifier plus an append-only ordered list of
// copies. Appends run as a single transaction (create-if-absent then insert)
// so concurrent intake of the same tag composes; the only in-place mutation
// is the replacement workflow's single-element swap. No deletion path exists.
package records
