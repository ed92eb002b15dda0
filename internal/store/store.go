// Package store persists the catalog as flat JSON documents under a data directory.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
)

// Collection file names inside the data directory.
const (
	BooksFile    = "books.json"
	CommentsFile = "comments.json"
	UsersFile    = "users.json"
	CoversDir    = "covers"
)

// Store owns the documents of one data directory.
//
// Lock order for operations touching several documents: Books, then
// Comments, then Users.
type Store struct {
	dataDir string
	logger  *slog.Logger

	Books    *Document[domain.Book]
	Comments *Document[domain.Comment]
	Users    *Document[domain.User]
}

// New creates a Store rooted at dataDir. Call Init before first use.
func New(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		dataDir:  dataDir,
		logger:   logger,
		Books:    NewDocument[domain.Book]("books", filepath.Join(dataDir, BooksFile), logger),
		Comments: NewDocument[domain.Comment]("comments", filepath.Join(dataDir, CommentsFile), logger),
		Users:    NewDocument[domain.User]("users", filepath.Join(dataDir, UsersFile), logger),
	}
}

// DataDir returns the root data directory.
func (s *Store) DataDir() string { return s.dataDir }

// CoversDir returns the cover asset directory.
func (s *Store) CoversDir() string { return filepath.Join(s.dataDir, CoversDir) }

// Init creates the data and covers directories and empty books and comments
// documents when missing. It is idempotent and never overwrites content.
// The users document is left to the auth bootstrap.
func (s *Store) Init(ctx context.Context) error {
	for _, dir := range []string{s.dataDir, s.CoversDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Storage(fmt.Sprintf("create %s", dir), err)
		}
	}

	if !s.Books.Exists() {
		if err := s.Books.Save(ctx, nil); err != nil {
			return err
		}
	}
	if !s.Comments.Exists() {
		if err := s.Comments.Save(ctx, nil); err != nil {
			return err
		}
	}

	s.logger.Info("data directory ready", "path", s.dataDir)
	return nil
}
