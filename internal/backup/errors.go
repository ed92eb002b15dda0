// Package backup exports, imports, archives and restores the catalog.
package backup

import "github.com/bookblog/bookblog-server/internal/errors"

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.MalformedDocument("invalid or missing manifest", nil)

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.MalformedDocument("backup version not supported", nil)

	// ErrInvalidArchive indicates the data is not a readable zip archive.
	ErrInvalidArchive = errors.MalformedDocument("backup is not a valid zip archive", nil)

	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = errors.NotFound("backup not found")

	// ErrRemoteDisabled indicates an upload was requested without a remote configured.
	ErrRemoteDisabled = errors.Validation("remote backups are not configured")
)
