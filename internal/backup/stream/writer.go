// Package stream reads and writes named entries of backup zip archives.
package stream

import (
	"archive/zip"
	"io"
	"time"
)

// Writer adds deflated entries to a zip archive, stamping each with the same
// modification time.
type Writer struct {
	zw       *zip.Writer
	modified time.Time
	count    int
}

// NewWriter wraps w in a zip writer. Close must be called to finish the archive.
func NewWriter(w io.Writer, modified time.Time) *Writer {
	return &Writer{zw: zip.NewWriter(w), modified: modified}
}

// Create starts a new entry and returns a writer for its content.
func (w *Writer) Create(name string) (io.Writer, error) {
	ew, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.modified,
	})
	if err != nil {
		return nil, err
	}
	w.count++
	return ew, nil
}

// WriteFile adds an entry holding data.
func (w *Writer) WriteFile(name string, data []byte) error {
	ew, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = ew.Write(data)
	return err
}

// CopyFile adds an entry holding everything read from r.
func (w *Writer) CopyFile(name string, r io.Reader) error {
	ew, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(ew, r)
	return err
}

// Count returns entries written so far.
func (w *Writer) Count() int {
	return w.count
}

// Close writes the central directory. It does not close the underlying writer.
func (w *Writer) Close() error {
	return w.zw.Close()
}
