package backup

import (
	"time"

	"encoding/json/jsontext"
	"encoding/json/v2"

	"github.com/bookblog/bookblog-server/internal/errors"
)

// FormatVersion is the archive format version written to every manifest.
const FormatVersion = 1

// DefaultNotes is the manifest note used when none is given.
const DefaultNotes = "BookBlog backup"

// Archive entry names.
const (
	ManifestEntry = "manifest.json"
	BooksEntry    = "data/books.json"
	CommentsEntry = "data/comments.json"
	CoversPrefix  = "data/covers/"
)

// Manifest describes when and why an archive was made.
type Manifest struct {
	Version     int       `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Notes       string    `json:"notes"`
}

// NewManifest returns a manifest for an archive generated now.
func NewManifest(notes string) Manifest {
	if notes == "" {
		notes = DefaultNotes
	}
	return Manifest{
		Version:     FormatVersion,
		GeneratedAt: time.Now().UTC(),
		Notes:       notes,
	}
}

// ParseManifest decodes and version-checks a manifest entry.
// Unknown members are tolerated so newer writers stay readable.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, ErrInvalidManifest.WithCause(err)
	}
	if m.Version == 0 {
		return nil, ErrInvalidManifest
	}
	if m.Version != FormatVersion {
		return &m, ErrVersionMismatch.WithDetails(map[string]int{
			"version":   m.Version,
			"supported": FormatVersion,
		})
	}
	return &m, nil
}

func encodeManifest(m Manifest) ([]byte, error) {
	data, err := json.Marshal(m, jsontext.WithIndent("  "))
	if err != nil {
		return nil, errors.Internalf("encode manifest: %v", err)
	}
	return data, nil
}
