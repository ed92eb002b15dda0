package store

import (
	"context"
	"encoding/json/v2"
	"encoding/json/jsontext"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bookblog/bookblog-server/internal/errors"
)

const documentPerm = 0o644

// Document is one collection persisted as a JSON array file.
//
// Reads are lock-free: Save replaces the file atomically, so a concurrent
// Load sees a complete old or new array. Writers serialize on mu.
type Document[T any] struct {
	name   string
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewDocument creates a document stored at path. The file is not touched.
func NewDocument[T any](name, path string, logger *slog.Logger) *Document[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Document[T]{
		name:   name,
		path:   path,
		logger: logger.With("document", name),
	}
}

// Name returns the collection name, e.g. "books".
func (d *Document[T]) Name() string { return d.name }

// Path returns the file backing the document.
func (d *Document[T]) Path() string { return d.path }

// Exists reports whether the backing file is present.
func (d *Document[T]) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// Load reads every record. A missing, unreadable or malformed file yields an
// empty slice; the failure is logged and never returned.
func (d *Document[T]) Load(ctx context.Context) []T {
	if err := ctx.Err(); err != nil {
		d.logger.Warn("load skipped", "error", err)
		return []T{}
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn("failed to read document, treating as empty", "path", d.path, "error", err)
		}
		return []T{}
	}

	records, err := Decode[T](data)
	if err != nil {
		d.logger.Warn("failed to parse document, treating as empty", "path", d.path, "error", err)
		return []T{}
	}
	return records
}

// Save replaces the document content with records.
func (d *Document[T]) Save(ctx context.Context, records []T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, records)
}

// Update runs fn on the current records and saves what it returns. The
// document stays locked for the whole load-mutate-save span so concurrent
// updates in this process cannot lose each other's writes.
//
// If fn returns an error nothing is written and the error is returned as is.
// Nested Updates on other documents must follow the books, comments, users order.
func (d *Document[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	updated, err := fn(d.Load(ctx))
	if err != nil {
		return err
	}
	return d.save(ctx, updated)
}

// View runs fn on the current records while holding the document lock,
// without saving. It pins the document while a dependent document is updated.
func (d *Document[T]) View(ctx context.Context, fn func(records []T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fn(d.Load(ctx))
}

func (d *Document[T]) save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(records)
	if err != nil {
		return errors.Storage(fmt.Sprintf("encode %s", d.name), err)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return errors.Storage(fmt.Sprintf("create directory for %s", d.name), err)
	}

	if err := WriteFileAtomic(d.path, data, documentPerm); err != nil {
		return errors.Storage(fmt.Sprintf("write %s", d.name), err)
	}

	d.logger.Debug("document saved", "records", len(records))
	return nil
}

// Encode renders records in the canonical on-disk form: a JSON array,
// two-space indentation, non-ASCII left unescaped, trailing newline.
func Encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records, jsontext.WithIndent("  "))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON array of records. Unknown members are rejected.
// A literal null decodes to an empty slice.
func Decode[T any](data []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records, json.RejectUnknownMembers(true)); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
