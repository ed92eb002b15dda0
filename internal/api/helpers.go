package api

import (
	"time"

	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/media/images"
)

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Title"`
	Author        string    `json:"author" doc:"Author"`
	Year          string    `json:"year" doc:"Publication year as entered"`
	Tags          []string  `json:"tags" doc:"Tags"`
	Description   string    `json:"description" doc:"Description"`
	CoverPath     string    `json:"cover_path" doc:"Data-relative cover path, empty when absent"`
	CoverURL      string    `json:"cover_url,omitempty" doc:"URL serving the cover image"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty" doc:"BlurHash placeholder for the cover"`
	Owner         string    `json:"owner,omitempty" doc:"Username that added the book"`
	CreatedAt     time.Time `json:"created_at" doc:"Creation time"`
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID        string    `json:"id" doc:"Comment ID"`
	BookID    string    `json:"book_id" doc:"Book the comment belongs to"`
	User      string    `json:"user" doc:"Display name of the author"`
	Text      string    `json:"text" doc:"Comment text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// UserResponse represents an account in admin responses. Credentials are
// never exposed.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Username  string    `json:"username" doc:"Username"`
	Role      string    `json:"role" doc:"Role: admin or user"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func coverURL(coverPath string) string {
	if coverPath == "" {
		return ""
	}
	return "/api/v1/covers/" + images.NameFromPath(coverPath)
}

func mapBook(b *domain.Book) BookResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Year:          b.Year,
		Tags:          tags,
		Description:   b.Description,
		CoverPath:     b.CoverPath,
		CoverURL:      coverURL(b.CoverPath),
		CoverBlurHash: b.CoverBlurHash,
		Owner:         b.Owner,
		CreatedAt:     b.CreatedAt,
	}
}

func mapBooks(books []domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = mapBook(&books[i])
	}
	return out
}

func mapComment(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		BookID:    c.BookID,
		User:      c.User,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

func mapComments(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = mapComment(&comments[i])
	}
	return out
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}
