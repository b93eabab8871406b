// Package textutil sanitizes externally supplied names before they are
// used as filesystem path segments.
package textutil
