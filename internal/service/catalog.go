// Package service implements the catalog and account operations invoked by
// the HTTP API and the CLI.
package service

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/id"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/store"
)

// CatalogService manages books, comments and cover assets.
type CatalogService struct {
	store  *store.Store
	covers *images.CoverProcessor
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *store.Store, covers *images.CoverProcessor, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CatalogService{store: store, covers: covers, logger: logger}
}

// DeleteResult reports what a book deletion removed. The cover unlink is
// best effort: a failure leaves the book deleted and is reported in CoverErr.
type DeleteResult struct {
	Book            domain.Book
	CommentsRemoved int
	CoverRemoved    bool
	CoverErr        error
}

// AddBook validates input and appends a new book. The owner is the
// identity's username, or "system" when identity is nil.
func (s *CatalogService) AddBook(ctx context.Context, identity *domain.Identity, in domain.BookInput) (*domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.Validation("title is required")
	}

	bookID, err := id.Book()
	if err != nil {
		return nil, errors.Internal("generate book ID").WithCause(err)
	}

	book := domain.Book{
		Record:        domain.Record{ID: bookID},
		Title:         title,
		Author:        strings.TrimSpace(in.Author),
		Year:          strings.TrimSpace(in.Year),
		Tags:          domain.ParseTags(in.Tags),
		Description:   strings.TrimSpace(in.Description),
		CoverPath:     in.CoverPath,
		CoverBlurHash: in.CoverBlurHash,
		Owner:         identity.Name(domain.SystemOwner),
	}
	book.InitTimestamps()

	err = s.store.Books.Update(ctx, func(books []domain.Book) ([]domain.Book, error) {
		return append(books, book), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book added", "book_id", book.ID, "title", book.Title, "owner", book.Owner)
	return &book, nil
}

// GetBook returns a book by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	books := s.store.Books.Load(ctx)
	if i := indexBook(books, bookID); i >= 0 {
		return &books[i], nil
	}
	return nil, errors.NotFoundf("book %s not found", bookID)
}

// DeleteBook removes a book and its comments, then unlinks its cover.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) (*DeleteResult, error) {
	result := &DeleteResult{}

	err := s.store.Books.Update(ctx, func(books []domain.Book) ([]domain.Book, error) {
		i := indexBook(books, bookID)
		if i < 0 {
			return nil, errors.NotFoundf("book %s not found", bookID)
		}
		result.Book = books[i]

		// Comments first: if this fails the book stays and nothing dangles.
		err := s.store.Comments.Update(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
			kept := slices.DeleteFunc(comments, func(c domain.Comment) bool { return c.BookID == bookID })
			result.CommentsRemoved = len(comments) - len(kept)
			return kept, nil
		})
		if err != nil {
			return nil, err
		}

		return slices.Delete(books, i, i+1), nil
	})
	if err != nil {
		return nil, err
	}

	if result.Book.HasCover() {
		if err := s.unlinkCover(result.Book.CoverPath); err != nil {
			result.CoverErr = err
			s.logger.Warn("failed to remove cover of deleted book",
				"book_id", bookID,
				"cover_path", result.Book.CoverPath,
				"error", err,
			)
		} else {
			result.CoverRemoved = true
		}
	}

	s.logger.Info("book deleted",
		"book_id", bookID,
		"comments_removed", result.CommentsRemoved,
		"cover_removed", result.CoverRemoved,
	)
	return result, nil
}

func (s *CatalogService) unlinkCover(coverPath string) error {
	if s.covers == nil {
		return errors.Internal("cover storage not configured")
	}
	return s.covers.Storage().Delete(images.NameFromPath(coverPath))
}

// AddComment attaches a comment to an existing book. Blank user names
// become "Anonymous".
func (s *CatalogService) AddComment(ctx context.Context, bookID, user, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("comment text is required")
	}
	user = strings.TrimSpace(user)
	if user == "" {
		user = domain.AnonymousUser
	}

	commentID, err := id.Comment()
	if err != nil {
		return nil, errors.Internal("generate comment ID").WithCause(err)
	}
	comment := domain.Comment{
		Record: domain.Record{ID: commentID},
		BookID: bookID,
		User:   user,
		Text:   text,
	}
	comment.InitTimestamps()

	// Pin books so a concurrent DeleteBook cannot orphan the new comment.
	err = s.store.Books.View(ctx, func(books []domain.Book) error {
		if indexBook(books, bookID) < 0 {
			return errors.NotFoundf("book %s not found", bookID)
		}
		return s.store.Comments.Update(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
			return append(comments, comment), nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added", "comment_id", comment.ID, "book_id", bookID, "user", user)
	return &comment, nil
}

// DeleteComment removes a single comment.
func (s *CatalogService) DeleteComment(ctx context.Context, commentID string) error {
	err := s.store.Comments.Update(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
		i := slices.IndexFunc(comments, func(c domain.Comment) bool { return c.ID == commentID })
		if i < 0 {
			return nil, errors.NotFoundf("comment %s not found", commentID)
		}
		return slices.Delete(comments, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("comment deleted", "comment_id", commentID)
	return nil
}

// GetComment returns a comment by ID.
func (s *CatalogService) GetComment(ctx context.Context, commentID string) (*domain.Comment, error) {
	comments := s.store.Comments.Load(ctx)
	if i := slices.IndexFunc(comments, func(c domain.Comment) bool { return c.ID == commentID }); i >= 0 {
		return &comments[i], nil
	}
	return nil, errors.NotFoundf("comment %s not found", commentID)
}

// ListComments returns the comments of a book in document order. Comments
// pointing at a missing book are never returned.
func (s *CatalogService) ListComments(ctx context.Context, bookID string) []domain.Comment {
	if indexBook(s.store.Books.Load(ctx), bookID) < 0 {
		return []domain.Comment{}
	}

	out := []domain.Comment{}
	for _, c := range s.store.Comments.Load(ctx) {
		if c.BookID == bookID {
			out = append(out, c)
		}
	}
	return out
}

// Search returns books whose title, author, year, tags or description
// contain query, ignoring case. An empty query matches everything. Results
// are newest first; equal timestamps keep document order.
func (s *CatalogService) Search(ctx context.Context, query string) []domain.Book {
	q := strings.ToLower(strings.TrimSpace(query))

	books := s.store.Books.Load(ctx)
	matches := make([]domain.Book, 0, len(books))
	for i := range books {
		if q == "" || strings.Contains(books[i].SearchText(), q) {
			matches = append(matches, books[i])
		}
	}

	slices.SortStableFunc(matches, func(a, b domain.Book) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return matches
}

// SaveCoverImage normalizes and stores an uploaded cover, returning its
// data-directory-relative path and BlurHash for BookInput.
func (s *CatalogService) SaveCoverImage(ctx context.Context, filename string, r io.Reader) (*images.Cover, error) {
	if s.covers == nil {
		return nil, errors.Internal("cover storage not configured")
	}
	return s.covers.Process(ctx, filename, r)
}

// PruneOrphanComments deletes comments whose book no longer exists and
// returns how many were removed.
func (s *CatalogService) PruneOrphanComments(ctx context.Context) (int, error) {
	removed := 0

	err := s.store.Books.View(ctx, func(books []domain.Book) error {
		known := make(map[string]struct{}, len(books))
		for _, b := range books {
			known[b.ID] = struct{}{}
		}

		return s.store.Comments.Update(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
			kept := slices.DeleteFunc(comments, func(c domain.Comment) bool {
				_, ok := known[c.BookID]
				return !ok
			})
			removed = len(comments) - len(kept)
			return kept, nil
		})
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("orphan comments pruned", "count", removed)
	}
	return removed, nil
}

func indexBook(books []domain.Book, bookID string) int {
	return slices.IndexFunc(books, func(b domain.Book) bool { return b.ID == bookID })
}
