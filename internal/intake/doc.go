// Package intake coordinates batch document submission: fingerprinting,
// duplicate detection, concurrent upload and tag decode, and record
// append, with per-item failure isolation. It also hosts the copy
// replacement workflow.
package intake
