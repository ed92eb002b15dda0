package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/comments",
		Summary:     "List comments",
		Description: "Returns the comments of a book in the order they were posted",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/comments",
		Summary:       "Add comment",
		Description:   "Attaches a comment to a book. Signed-in users comment under their username; anonymous callers may supply a display name.",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Removes a single comment (admin only)",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// ListCommentsInput contains the book ID.
type ListCommentsInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// ListCommentsResponse lists the comments of a book.
type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments" doc:"Comments in posting order"`
	Total    int               `json:"total" doc:"Number of comments"`
}

// ListCommentsOutput wraps the comment list for Huma.
type ListCommentsOutput struct {
	Body ListCommentsResponse
}

// AddCommentRequest is the request body for a new comment.
type AddCommentRequest struct {
	User string `json:"user,omitempty" validate:"max=100" doc:"Display name, ignored for signed-in users"`
	Text string `json:"text" validate:"notblank,max=10000" doc:"Comment text"`
}

// AddCommentInput wraps the new comment for Huma.
type AddCommentInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body AddCommentRequest
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// DeleteCommentInput contains the comment ID.
type DeleteCommentInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Comment ID"`
}

// DeleteCommentOutput acknowledges a deletion.
type DeleteCommentOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
	if _, err := s.services.Catalog.GetBook(ctx, input.ID); err != nil {
		return nil, err
	}

	comments := s.services.Catalog.ListComments(ctx, input.ID)
	return &ListCommentsOutput{
		Body: ListCommentsResponse{
			Comments: mapComments(comments),
			Total:    len(comments),
		},
	}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user := GetIdentity(ctx).Name(input.Body.User)
	comment, err := s.services.Catalog.AddComment(ctx, input.ID, user, input.Body.Text)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: mapComment(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *DeleteCommentInput) (*DeleteCommentOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteComment(ctx, input.ID); err != nil {
		return nil, err
	}
	return &DeleteCommentOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}
