// Package fingerprint produces the deterministic content digests used as
// duplicate-detection keys. Equal bytes always yield equal digests; the hash
// is non-cryptographic by design.
package fingerprint
