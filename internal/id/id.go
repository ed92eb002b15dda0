// Package id generates prefixed record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record kinds kept in the data directory.
const (
	PrefixBook    = "book"
	PrefixComment = "comment"
	PrefixUser    = "user"
)

// Generate returns prefix-<21 char NanoID>, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// The prefix keeps IDs of different kinds visually distinct in the documents.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Book returns a new book identifier.
func Book() (string, error) { return Generate(PrefixBook) }

// Comment returns a new comment identifier.
func Comment() (string, error) { return Generate(PrefixComment) }

// User returns a new user identifier.
func User() (string, error) { return Generate(PrefixUser) }
