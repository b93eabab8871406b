// Package services defines the shared error taxonomy and context annotation
// helpers used by Tagdock components and their transport layers.
package services
