package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bookblog/bookblog-server/internal/backup/stream"
	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/reconcile"
	"github.com/bookblog/bookblog-server/internal/store"
)

// Archiver moves whole collections and the cover directory in and out of
// the store.
type Archiver struct {
	store  *store.Store
	covers *images.Storage
	logger *slog.Logger
}

// NewArchiver creates an Archiver over s and its cover storage.
func NewArchiver(s *store.Store, covers *images.Storage, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Archiver{store: s, covers: covers, logger: logger.With("component", "archive")}
}

// ExportDocument returns the collection in its canonical on-disk form.
func (a *Archiver) ExportDocument(ctx context.Context, c Collection) ([]byte, error) {
	switch c {
	case CollectionBooks:
		return encodeDocument(c, a.store.Books.Load(ctx))
	case CollectionComments:
		return encodeDocument(c, a.store.Comments.Load(ctx))
	default:
		return nil, errors.Validationf("unknown collection %q", c)
	}
}

// ImportDocument parses data as a full collection document and applies it.
// Replace overwrites the collection; merge reconciles by ID with the
// imported records winning. Nothing is written if data does not parse.
func (a *Archiver) ImportDocument(ctx context.Context, c Collection, data []byte, mode Mode) (*ImportResult, error) {
	if !mode.Valid() {
		return nil, errors.Validationf("unknown import mode %q", mode)
	}

	var (
		result *ImportResult
		err    error
	)
	switch c {
	case CollectionBooks:
		var books []domain.Book
		if books, err = decodeDocument[domain.Book](c, data); err == nil {
			result, err = importRecords(ctx, a.store.Books, c, books, mode)
		}
	case CollectionComments:
		var comments []domain.Comment
		if comments, err = decodeDocument[domain.Comment](c, data); err == nil {
			result, err = importRecords(ctx, a.store.Comments, c, comments, mode)
		}
	default:
		return nil, errors.Validationf("unknown collection %q", c)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Info("collection imported",
		"collection", c,
		"mode", mode,
		"imported", result.Imported,
		"replaced", result.Replaced,
		"added", result.Added,
		"total", result.Total)
	return result, nil
}

// MakeBackup returns a complete archive of books, comments and covers.
func (a *Archiver) MakeBackup(ctx context.Context, notes string) ([]byte, error) {
	var buf bytes.Buffer
	if _, _, err := a.WriteBackup(ctx, &buf, notes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteBackup streams a complete archive to w.
//
// Books and comments are read together under their document locks so the
// archive holds a consistent pair.
func (a *Archiver) WriteBackup(ctx context.Context, w io.Writer, notes string) (*Manifest, EntityCounts, error) {
	var (
		counts   EntityCounts
		books    []byte
		comments []byte
	)

	err := a.store.Books.View(ctx, func(bs []domain.Book) error {
		return a.store.Comments.View(ctx, func(cs []domain.Comment) error {
			var err error
			if books, err = encodeDocument(CollectionBooks, bs); err != nil {
				return err
			}
			if comments, err = encodeDocument(CollectionComments, cs); err != nil {
				return err
			}
			counts.Books, counts.Comments = len(bs), len(cs)
			return nil
		})
	})
	if err != nil {
		return nil, counts, err
	}

	manifest := NewManifest(notes)
	zw := stream.NewWriter(w, manifest.GeneratedAt)

	if err := zw.WriteFile(BooksEntry, books); err != nil {
		return nil, counts, errors.Storage("write books to archive", err)
	}
	if err := zw.WriteFile(CommentsEntry, comments); err != nil {
		return nil, counts, errors.Storage("write comments to archive", err)
	}

	names, err := a.covers.List()
	if err != nil {
		return nil, counts, errors.Storage("list covers", err)
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, counts, err
		}
		data, err := a.covers.Get(name)
		if err != nil {
			// Removed between List and Get.
			a.logger.Warn("cover skipped", "name", name, "error", err)
			continue
		}
		if err := zw.WriteFile(CoversPrefix+name, data); err != nil {
			return nil, counts, errors.Storage("write cover to archive", err)
		}
		counts.Covers++
	}

	mdata, err := encodeManifest(manifest)
	if err != nil {
		return nil, counts, err
	}
	if err := zw.WriteFile(ManifestEntry, mdata); err != nil {
		return nil, counts, errors.Storage("write manifest to archive", err)
	}
	if err := zw.Close(); err != nil {
		return nil, counts, errors.Storage("finish archive", err)
	}

	a.logger.Info("archive written",
		"books", counts.Books,
		"comments", counts.Comments,
		"covers", counts.Covers)
	return &manifest, counts, nil
}

// Validate inspects an archive without importing anything. The returned
// error is reserved for context cancellation; problems with the archive are
// reported in the result.
func (a *Archiver) Validate(ctx context.Context, archive []byte) (*ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := stream.Open(archive)
	if err != nil {
		return &ValidationResult{
			Errors: []string{fmt.Sprintf("failed to open backup: %v", err)},
		}, nil
	}

	result := &ValidationResult{Valid: true}

	mdata, err := stream.ReadFile(zr, ManifestEntry)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, "missing manifest.json")
	} else {
		manifest, err := ParseManifest(mdata)
		result.Manifest = manifest
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if data, err := stream.ReadFile(zr, BooksEntry); err == nil {
		books, err := decodeDocument[domain.Book](CollectionBooks, data)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		}
		result.Counts.Books = len(books)
	} else {
		result.Warnings = append(result.Warnings, "missing file: "+BooksEntry)
	}

	if data, err := stream.ReadFile(zr, CommentsEntry); err == nil {
		comments, err := decodeDocument[domain.Comment](CollectionComments, data)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		}
		result.Counts.Comments = len(comments)
	} else {
		result.Warnings = append(result.Warnings, "missing file: "+CommentsEntry)
	}

	for f := range stream.Files(zr, CoversPrefix) {
		if images.ValidName(baseName(f.Name)) {
			result.Counts.Covers++
		} else {
			result.Warnings = append(result.Warnings, "unusable cover entry: "+f.Name)
		}
	}

	return result, nil
}

func importRecords[T reconcile.Identifiable](ctx context.Context, doc *store.Document[T], c Collection, incoming []T, mode Mode) (*ImportResult, error) {
	result := &ImportResult{Collection: c, Mode: mode, Imported: len(incoming)}

	err := doc.Update(ctx, func(current []T) ([]T, error) {
		if mode == ModeReplace {
			result.Added = len(incoming)
			result.Total = len(incoming)
			return incoming, nil
		}
		merged, stats := reconcile.MergeWithStats(current, incoming)
		result.Stats = stats
		result.Total = len(merged)
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func encodeDocument[T any](c Collection, records []T) ([]byte, error) {
	data, err := store.Encode(records)
	if err != nil {
		return nil, errors.Internalf("encode %s: %v", c, err)
	}
	return data, nil
}

func decodeDocument[T any](c Collection, data []byte) ([]T, error) {
	records, err := store.Decode[T](data)
	if err != nil {
		return nil, errors.MalformedDocument(fmt.Sprintf("invalid %s document", c), err)
	}
	return records, nil
}
