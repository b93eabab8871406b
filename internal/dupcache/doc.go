// Package dupcache implements the two-tier duplicate-detection lookup: a
// volatile fast tier (Redis or in-process) over the record store as source
// of truth. The volatile tier is an optimization only; its failures degrade
// to store lookups and never affect correctness.
package dupcache
