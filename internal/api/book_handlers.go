package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookblog/bookblog-server/internal/domain"
	domainerrors "github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/http/response"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "Search books",
		Description: "Case-insensitive substring search over title, author, year, tags and description. Newest first; an empty query lists everything.",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a single book",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book, its comments and its cover file (admin or owner)",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	// Multipart: plain chi handler.
	s.router.Post("/api/v1/books", s.handleCreateBook)
}

// === DTOs ===

// SearchBooksInput contains the search query.
type SearchBooksInput struct {
	Query string `query:"q" doc:"Search text; empty lists all books"`
}

// SearchBooksResponse lists matching books.
type SearchBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Matching books, newest first"`
	Total int            `json:"total" doc:"Number of matches"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

// GetBookInput contains the book ID.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body BookResponse
}

// DeleteBookInput contains the book ID.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// DeleteBookResponse reports what a deletion removed.
type DeleteBookResponse struct {
	ID              string `json:"id" doc:"Deleted book ID"`
	CommentsRemoved int    `json:"comments_removed" doc:"Number of comments removed with the book"`
	CoverRemoved    bool   `json:"cover_removed" doc:"Whether the cover file was unlinked"`
	CoverError      string `json:"cover_error,omitempty" doc:"Why the cover file could not be removed"`
}

// DeleteBookOutput wraps the deletion report for Huma.
type DeleteBookOutput struct {
	Body DeleteBookResponse
}

// CreateBookForm holds the multipart fields of a new book.
type CreateBookForm struct {
	Title       string `form:"title" validate:"notblank,max=500"`
	Author      string `form:"author" validate:"max=500"`
	Year        string `form:"year" validate:"max=32"`
	Tags        string `form:"tags" validate:"max=2000"`
	Description string `form:"description" validate:"max=20000"`
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	books := s.services.Catalog.Search(ctx, input.Query)
	return &SearchBooksOutput{
		Body: SearchBooksResponse{
			Books: mapBooks(books),
			Total: len(books),
		},
	}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*DeleteBookOutput, error) {
	identity, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !canDeleteBook(identity, book) {
		return nil, domainerrors.Forbidden("only an admin or the book's owner can delete it")
	}

	result, err := s.services.Catalog.DeleteBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := DeleteBookResponse{
		ID:              result.Book.ID,
		CommentsRemoved: result.CommentsRemoved,
		CoverRemoved:    result.CoverRemoved,
	}
	if result.CoverErr != nil {
		resp.CoverError = result.CoverErr.Error()
	}
	return &DeleteBookOutput{Body: resp}, nil
}

func canDeleteBook(identity *domain.Identity, book *domain.Book) bool {
	if identity.IsAdmin() {
		return true
	}
	return book.Owner != "" && book.Owner != domain.SystemOwner && identity.Name("") == book.Owner
}

// handleCreateBook accepts multipart/form-data (or urlencoded) fields and an
// optional "cover" image. Anonymous callers are allowed; their books are
// owned by "system".
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.parseForm(w, r) {
		return
	}

	form := CreateBookForm{
		Title:       r.FormValue("title"),
		Author:      r.FormValue("author"),
		Year:        r.FormValue("year"),
		Tags:        r.FormValue("tags"),
		Description: r.FormValue("description"),
	}
	if err := s.validator.Validate(form); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	in := domain.BookInput{
		Title:       form.Title,
		Author:      form.Author,
		Year:        form.Year,
		Tags:        form.Tags,
		Description: form.Description,
	}

	var coverName string
	file, header, err := r.FormFile("cover")
	switch {
	case err == nil:
		defer file.Close()
		cover, err := s.services.Catalog.SaveCoverImage(ctx, header.Filename, file)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		coverName = cover.Name
		in.CoverPath = cover.Path
		in.CoverBlurHash = cover.BlurHash
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.BadRequest(w, "invalid cover upload", s.logger)
		return
	}

	book, err := s.services.Catalog.AddBook(ctx, GetIdentity(ctx), in)
	if err != nil {
		if coverName != "" && s.covers != nil {
			if delErr := s.covers.Delete(coverName); delErr != nil {
				s.logger.Warn("failed to remove cover of rejected book", "name", coverName, "error", delErr)
			}
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapBook(book), s.logger)
}

// parseForm bounds the body and parses form fields. Plain urlencoded forms
// are accepted. It writes the error response and returns false on failure.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation, "upload too large", s.logger)
		return false
	}
	response.BadRequest(w, "invalid form data", s.logger)
	return false
}
