package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bookblog/bookblog-server/internal/backup/remote"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/store"
)

// FileSuffix ends every backup file name; the ID is the name without it.
const FileSuffix = ".bookblog.zip"

const timestampLayout = "2006-01-02-150405"

// BackupService manages backup files kept in the backups directory.
type BackupService struct {
	archiver  *Archiver
	backupDir string
	remote    *remote.Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewBackupService creates a BackupService. remote may be nil.
func NewBackupService(archiver *Archiver, backupDir string, remote *remote.Store, logger *slog.Logger) *BackupService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BackupService{
		archiver:  archiver,
		backupDir: backupDir,
		remote:    remote,
		logger:    logger.With("component", "backup"),
		now:       time.Now,
	}
}

// Dir returns the backups directory.
func (s *BackupService) Dir() string { return s.backupDir }

// RemoteEnabled reports whether archives can be uploaded.
func (s *BackupService) RemoteEnabled() bool { return s.remote != nil }

// Create writes a new archive to the backups directory and optionally
// uploads it.
func (s *BackupService) Create(ctx context.Context, opts BackupOptions) (*BackupResult, error) {
	start := time.Now()

	if opts.Upload && s.remote == nil {
		return nil, ErrRemoteDisabled
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, errors.Storage("create backup dir", err)
	}

	id := s.nextID()
	path := s.Path(id)
	s.logger.Info("creating backup", "output", path)

	hash := sha256.New()
	var (
		manifest *Manifest
		counts   EntityCounts
	)
	err := store.WriteAtomic(path, 0o644, func(w io.Writer) error {
		var err error
		manifest, counts, err = s.archiver.WriteBackup(ctx, io.MultiWriter(w, hash), opts.Notes)
		return err
	})
	if err != nil {
		var domainErr *errors.Error
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Storage("write backup", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Storage("stat backup", err)
	}

	result := &BackupResult{
		ID:       id,
		Path:     path,
		Size:     info.Size(),
		Manifest: *manifest,
		Counts:   counts,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}

	if opts.Upload {
		obj, err := s.upload(ctx, path, info.Size())
		if err != nil {
			return nil, err
		}
		result.Remote = obj.Key
	}

	result.Duration = time.Since(start)
	s.logger.Info("backup complete",
		"path", result.Path,
		"size", result.Size,
		"duration", result.Duration,
		"checksum", result.Checksum)
	return result, nil
}

func (s *BackupService) upload(ctx context.Context, path string, size int64) (*remote.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Storage("open backup for upload", err)
	}
	defer f.Close()

	obj, err := s.remote.Upload(ctx, filepath.Base(path), f, size)
	if err != nil {
		return nil, errors.Storage("upload backup", err)
	}
	return obj, nil
}

// Upload ships an existing backup to the remote bucket.
func (s *BackupService) Upload(ctx context.Context, id string) (*remote.Object, error) {
	if s.remote == nil {
		return nil, ErrRemoteDisabled
	}
	info, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, info.Path, info.Size)
}

// ListRemote returns the archives stored in the remote bucket.
func (s *BackupService) ListRemote(ctx context.Context) ([]remote.Object, error) {
	if s.remote == nil {
		return nil, ErrRemoteDisabled
	}
	objects, err := s.remote.List(ctx)
	if err != nil {
		return nil, errors.Storage("list remote backups", err)
	}
	return objects, nil
}

// nextID returns a timestamped ID that does not collide with an existing file.
func (s *BackupService) nextID() string {
	base := "backup-" + s.now().UTC().Format(timestampLayout)
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.Path(id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// List returns all available backups, newest first.
func (s *BackupService) List(ctx context.Context) ([]BackupInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, errors.Storage("list backups", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), FileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), FileSuffix)
		backups = append(backups, BackupInfo{
			ID:        id,
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC(),
		})
	}

	slices.SortFunc(backups, func(a, b BackupInfo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return backups, nil
}

// Get returns a backup by ID.
func (s *BackupService) Get(ctx context.Context, id string) (*BackupInfo, error) {
	if !validID(id) {
		return nil, ErrBackupNotFound
	}

	path := s.Path(id)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, errors.Storage("stat backup", err)
	}

	return &BackupInfo{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
	}, nil
}

// Open returns a reader over the backup file. The caller closes it.
func (s *BackupService) Open(ctx context.Context, id string) (io.ReadCloser, *BackupInfo, error) {
	info, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(info.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrBackupNotFound
		}
		return nil, nil, errors.Storage("open backup", err)
	}
	return f, info, nil
}

// Read returns the full content of a backup.
func (s *BackupService) Read(ctx context.Context, id string) ([]byte, error) {
	rc, _, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Storage("read backup", err)
	}
	return data, nil
}

// Delete removes a backup.
func (s *BackupService) Delete(ctx context.Context, id string) error {
	info, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(info.Path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return errors.Storage("delete backup", err)
	}
	s.logger.Info("backup deleted", "id", id)
	return nil
}

// Path returns the file path for a backup ID.
func (s *BackupService) Path(id string) string {
	return filepath.Join(s.backupDir, id+FileSuffix)
}

func validID(id string) bool {
	return id != "" &&
		!strings.ContainsAny(id, `/\`) &&
		!strings.HasPrefix(id, ".")
}
