package backup

import (
	"context"
	stderrors "errors"
	"path"
	"strings"
	"time"

	"github.com/bookblog/bookblog-server/internal/backup/stream"
	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/media/images"
)

// errUnchanged aborts an Update without writing.
var errUnchanged = stderrors.New("unchanged")

// RestoreBackup applies an archive to the live store.
//
// Both documents are parsed before anything is written, so a malformed
// archive changes nothing. Covers are then extracted by base name,
// overwriting files of the same name; the books and comments present in
// the archive are imported with mode; finally bare-filename cover paths are
// rewritten to covers/<name> where that file now exists.
func (a *Archiver) RestoreBackup(ctx context.Context, archive []byte, mode Mode) (*RestoreResult, error) {
	start := time.Now()

	if !mode.Valid() {
		return nil, errors.Validationf("unknown restore mode %q", mode)
	}

	zr, err := stream.Open(archive)
	if err != nil {
		return nil, ErrInvalidArchive.WithCause(err)
	}

	result := &RestoreResult{Mode: mode}

	// Archives without a readable manifest still restore; a readable one
	// from an unsupported format version does not.
	if mdata, err := stream.ReadFile(zr, ManifestEntry); err == nil {
		manifest, err := ParseManifest(mdata)
		if err != nil {
			if manifest != nil {
				return nil, err
			}
			a.logger.Warn("ignoring unreadable manifest", "error", err)
		}
		result.Manifest = manifest
	}

	var (
		books    []domain.Book
		comments []domain.Comment
	)
	hasBooks := stream.Has(zr, BooksEntry)
	if hasBooks {
		data, err := stream.ReadFile(zr, BooksEntry)
		if err != nil {
			return nil, errors.MalformedDocument("read books from archive", err)
		}
		if books, err = decodeDocument[domain.Book](CollectionBooks, data); err != nil {
			return nil, err
		}
	}
	hasComments := stream.Has(zr, CommentsEntry)
	if hasComments {
		data, err := stream.ReadFile(zr, CommentsEntry)
		if err != nil {
			return nil, errors.MalformedDocument("read comments from archive", err)
		}
		if comments, err = decodeDocument[domain.Comment](CollectionComments, data); err != nil {
			return nil, err
		}
	}

	for f := range stream.Files(zr, CoversPrefix) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := baseName(f.Name)
		if !images.ValidName(name) {
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		data, err := stream.Read(f)
		if err != nil {
			return nil, errors.MalformedDocument("read cover from archive", err)
		}
		if err := a.covers.Save(name, data); err != nil {
			return nil, errors.Storage("restore cover "+name, err)
		}
		result.Covers++
	}

	if hasBooks {
		if result.Books, err = importRecords(ctx, a.store.Books, CollectionBooks, books, mode); err != nil {
			return nil, err
		}
	}
	if hasComments {
		if result.Comments, err = importRecords(ctx, a.store.Comments, CollectionComments, comments, mode); err != nil {
			return nil, err
		}
	}

	if result.CoverPathsRepaired, err = a.RepairCoverPaths(ctx); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	a.logger.Info("restore complete",
		"mode", mode,
		"covers", result.Covers,
		"books", hasBooks,
		"comments", hasComments,
		"repaired", result.CoverPathsRepaired,
		"skipped", len(result.Skipped),
		"duration", result.Duration)
	return result, nil
}

// RepairCoverPaths rewrites every cover_path that is a bare file name, after
// trimming surrounding space, to the canonical covers/<name> form when that
// file exists. The books document is written only if a record changed.
func (a *Archiver) RepairCoverPaths(ctx context.Context) (int, error) {
	repaired := 0
	err := a.store.Books.Update(ctx, func(books []domain.Book) ([]domain.Book, error) {
		for i := range books {
			cp := strings.TrimSpace(books[i].CoverPath)
			if cp == "" || strings.ContainsAny(cp, `/\`) {
				continue
			}
			if a.covers.Exists(cp) {
				books[i].CoverPath = images.RelPath(cp)
				repaired++
			}
		}
		if repaired == 0 {
			return nil, errUnchanged
		}
		return books, nil
	})
	if err != nil && !stderrors.Is(err, errUnchanged) {
		return 0, err
	}
	return repaired, nil
}

// baseName strips any directories from an archive entry name, whichever
// separator the writer used.
func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}
