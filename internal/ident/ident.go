// Package ident generates opaque record identifiers.
package ident

import "github.com/google/uuid"

// Generator produces unique identifiers for new records.
type Generator func() string

// NewUUID returns a random UUID string.
func NewUUID() string {
	return uuid.NewString()
}
