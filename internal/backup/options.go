package backup

import (
	"strings"
	"time"

	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/reconcile"
)

// Collection names a document that can be exported and imported.
type Collection string

const (
	CollectionBooks    Collection = "books"
	CollectionComments Collection = "comments"
)

// Collections lists every importable collection in restore order.
var Collections = []Collection{CollectionBooks, CollectionComments}

// ParseCollection validates a collection name.
func ParseCollection(s string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CollectionBooks, CollectionComments:
		return c, nil
	default:
		return "", errors.Validationf("unknown collection %q", s)
	}
}

// Mode determines how imported records meet existing ones.
type Mode string

const (
	// ModeReplace overwrites the collection outright.
	ModeReplace Mode = "replace"

	// ModeMerge reconciles by ID; imported records win on conflict.
	ModeMerge Mode = "merge"
)

// Valid returns true if the mode is recognized.
func (m Mode) Valid() bool {
	return m == ModeReplace || m == ModeMerge
}

// ParseMode validates a mode string. Empty means merge.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return ModeMerge, nil
	}
	if !m.Valid() {
		return "", errors.Validationf("unknown import mode %q (want replace or merge)", s)
	}
	return m, nil
}

// BackupOptions configures backup creation.
type BackupOptions struct {
	Notes  string
	Upload bool // Ship the archive to the remote bucket
}

// EntityCounts tracks what an archive holds.
type EntityCounts struct {
	Books    int `json:"books"`
	Comments int `json:"comments"`
	Covers   int `json:"covers"`
}

// ImportResult reports what importing one collection did.
type ImportResult struct {
	Collection Collection `json:"collection"`
	Mode       Mode       `json:"mode"`
	Imported   int        `json:"imported"`
	Total      int        `json:"total"`

	reconcile.Stats `json:",inline"`
}

// RestoreResult contains the outcome of a restore operation.
type RestoreResult struct {
	Mode               Mode          `json:"mode"`
	Manifest           *Manifest     `json:"manifest,omitempty"`
	Covers             int           `json:"covers"`
	Books              *ImportResult `json:"books,omitempty"`
	Comments           *ImportResult `json:"comments,omitempty"`
	CoverPathsRepaired int           `json:"cover_paths_repaired"`
	Skipped            []string      `json:"skipped,omitempty"`
	Duration           time.Duration `json:"duration"`
}

// BackupResult contains the outcome of a backup operation.
type BackupResult struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Manifest Manifest      `json:"manifest"`
	Counts   EntityCounts  `json:"counts"`
	Duration time.Duration `json:"duration"`
	Checksum string        `json:"checksum"`
	Remote   string        `json:"remote,omitempty"`
}

// BackupInfo describes an existing backup.
type BackupInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidationResult describes backup validity.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Manifest *Manifest    `json:"manifest,omitempty"`
	Counts   EntityCounts `json:"counts"`
	Errors   []string     `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}
