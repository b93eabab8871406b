// Package symboldecode wraps the zbarimg binary, the external capability
// that extracts QR symbol payloads from raster images.
package symboldecode
