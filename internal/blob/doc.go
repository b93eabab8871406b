// Package blob defines the durable artifact storage boundary and a local
// filesystem implementation. The rest of the system treats locations as
// opaque strings and storage failures as upload failures.
package blob
