package stream

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// MaxEntrySize bounds how much of a single entry ReadFile will inflate.
const MaxEntrySize = 256 << 20

var (
	// ErrFileNotFound indicates a file was not found in the backup archive.
	ErrFileNotFound = errors.New("file not found in backup")

	// ErrEntryTooLarge indicates an entry inflates past MaxEntrySize.
	ErrEntryTooLarge = errors.New("backup entry too large")
)

// Open parses an in-memory zip archive. Entry names are not trusted by
// callers, so archives with insecure paths are accepted.
func Open(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, err
	}
	return zr, nil
}

// OpenFile finds and opens a file from a zip archive.
func OpenFile(zr *zip.Reader, path string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == path {
			return f.Open()
		}
	}
	return nil, ErrFileNotFound
}

// Has reports whether the archive contains an entry named path.
func Has(zr *zip.Reader, path string) bool {
	for _, f := range zr.File {
		if f.Name == path {
			return true
		}
	}
	return false
}

// ReadFile returns the inflated content of the entry named path.
func ReadFile(zr *zip.Reader, path string) ([]byte, error) {
	rc, err := OpenFile(zr, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readLimited(rc, path)
}

// Files iterates over the regular file entries under prefix.
func Files(zr *zip.Reader, prefix string) iter.Seq[*zip.File] {
	return func(yield func(*zip.File) bool) {
		for _, f := range zr.File {
			if !strings.HasPrefix(f.Name, prefix) || strings.HasSuffix(f.Name, "/") {
				continue
			}
			if f.FileInfo().IsDir() {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

// Read returns the inflated content of f.
func Read(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readLimited(rc, f.Name)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxEntrySize {
		return nil, fmt.Errorf("%w: %s", ErrEntryTooLarge, name)
	}
	return data, nil
}
