package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookblog/bookblog-server/internal/domain"
)

func (s *Server) registerAdminUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Lists all accounts (admin only)",
		Tags:        []string{"Admin", "Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/users",
		Summary:       "Create user",
		Description:   "Creates an account; usernames are unique ignoring case (admin only)",
		Tags:          []string{"Admin", "Users"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/users/{id}/password",
		Summary:     "Reset password",
		Description: "Replaces the password of an account (admin only)",
		Tags:        []string{"Admin", "Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleResetPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes an account. Admins cannot delete themselves or the last admin.",
		Tags:        []string{"Admin", "Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteUser)
}

// === DTOs ===

// ListUsersInput is the Huma input for listing users.
type ListUsersInput struct {
	Authorization string `header:"Authorization"`
}

// ListUsersResponse lists accounts.
type ListUsersResponse struct {
	Users []UserResponse `json:"users" doc:"Accounts in creation order"`
	Total int            `json:"total" doc:"Number of accounts"`
}

// ListUsersOutput wraps the user list for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// CreateUserRequest is the request body for a new account.
type CreateUserRequest struct {
	Username string `json:"username" validate:"notblank,max=64,username" doc:"Username"`
	Password string `json:"password" validate:"required,max=1024" doc:"Initial password"`
	Role     string `json:"role,omitempty" enum:"admin,user" doc:"Role, defaults to user"`
}

// CreateUserInput wraps the new account for Huma.
type CreateUserInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateUserRequest
}

// UserOutput wraps a single account for Huma.
type UserOutput struct {
	Body UserResponse
}

// ResetPasswordRequest is the request body for a password reset.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,max=1024" doc:"New password"`
}

// ResetPasswordInput wraps the reset for Huma.
type ResetPasswordInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
	Body          ResetPasswordRequest
}

// DeleteUserInput contains the user ID.
type DeleteUserInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"User ID"`
}

// AdminMessageOutput acknowledges an admin action.
type AdminMessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, _ *ListUsersInput) (*ListUsersOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users := s.services.Auth.ListUsers(ctx)
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = mapUser(&users[i])
	}
	return &ListUsersOutput{Body: ListUsersResponse{Users: resp, Total: len(resp)}}, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.CreateUser(ctx, input.Body.Username, input.Body.Password, domain.Role(input.Body.Role))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*AdminMessageOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	if err := s.services.Auth.ResetPassword(ctx, input.ID, input.Body.Password); err != nil {
		return nil, err
	}
	return &AdminMessageOutput{Body: MessageResponse{Message: "Password updated"}}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *DeleteUserInput) (*AdminMessageOutput, error) {
	actor, err := RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.DeleteUserAs(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	return &AdminMessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}
