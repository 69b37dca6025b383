// Package id generates opaque identifiers for domain entities.
//
// Identifiers are random UUIDs encoded as lowercase unpadded base32, which
// keeps them short, URL-safe, and free of ambiguous casing.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character identifier.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

// MustNewID returns a new identifier and panics when entropy is unavailable.
// Intended for wiring code where an id failure is unrecoverable anyway.
func MustNewID() string {
	v, err := NewID()
	if err != nil {
		panic(err)
	}
	return v
}
