package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/http/response"
	"github.com/bookblog/bookblog-server/internal/media/images"
)

func (s *Server) registerCoverRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCover",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/cover",
		Summary:     "Get book cover",
		Description: "Redirects to the cover image of a book",
		Tags:        []string{"Covers"},
	}, s.handleGetBookCover)

	// Direct chi route for file serving.
	s.router.Get("/api/v1/covers/{name}", s.handleServeCover)
}

// === DTOs ===

// GetBookCoverInput contains the book ID.
type GetBookCoverInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// CoverRedirectOutput redirects to the cover file.
type CoverRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

// === Handlers ===

func (s *Server) handleGetBookCover(ctx context.Context, input *GetBookCoverInput) (*CoverRedirectOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !book.HasCover() {
		return nil, domainerrors.NotFound("book has no cover")
	}

	return &CoverRedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: coverURL(book.CoverPath),
	}, nil
}

// handleServeCover streams a cover file with a content-derived ETag.
// Stored bytes may not match the file extension, so the type is sniffed.
func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if s.covers == nil || !images.ValidName(name) {
		response.NotFound(w, "cover not found", s.logger)
		return
	}

	data, err := s.covers.Get(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.NotFound(w, "cover not found", s.logger)
			return
		}
		s.logger.Error("failed to read cover", "name", name, "error", err)
		response.InternalError(w, "failed to read cover", s.logger)
		return
	}

	var modTime time.Time
	if info, err := os.Stat(s.covers.Path(name)); err == nil {
		modTime = info.ModTime()
	}

	sum := sha256.Sum256(data)
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("ETag", `"`+hex.EncodeToString(sum[:])+`"`)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, name, modTime, bytes.NewReader(data))
}
