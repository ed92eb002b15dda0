package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookblog/bookblog-server/internal/domain"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns a PASETO access token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the identity carried by the access token",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64" doc:"Account username"`
	Password string `json:"password" validate:"required,max=1024" doc:"Account password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// IdentityResponse is the session-facing view of an account.
type IdentityResponse struct {
	ID       string `json:"id" doc:"User ID"`
	Username string `json:"username" doc:"Username"`
	Role     string `json:"role" doc:"Role: admin or user"`
}

// LoginResponse contains the issued token.
type LoginResponse struct {
	AccessToken string           `json:"access_token" doc:"PASETO access token"`
	TokenType   string           `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   time.Time        `json:"expires_at" doc:"Token expiry"`
	ExpiresIn   int              `json:"expires_in" doc:"Seconds until expiry"`
	User        IdentityResponse `json:"user" doc:"Authenticated user"`
}

// LoginOutput wraps the login response for Huma.
type LoginOutput struct {
	Body LoginResponse
}

// CurrentUserOutput wraps the current identity for Huma.
type CurrentUserOutput struct {
	Body IdentityResponse
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	result, err := s.services.Auth.Login(ctx, input.Body.Username, input.Body.Password)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Body: LoginResponse{
			AccessToken: result.AccessToken,
			TokenType:   "Bearer",
			ExpiresAt:   result.ExpiresAt,
			ExpiresIn:   int(time.Until(result.ExpiresAt).Seconds()),
			User:        mapIdentity(result.User),
		},
	}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*CurrentUserOutput, error) {
	identity, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return &CurrentUserOutput{Body: mapIdentity(identity)}, nil
}

func mapIdentity(identity *domain.Identity) IdentityResponse {
	if identity == nil {
		return IdentityResponse{}
	}
	return IdentityResponse{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     string(identity.Role),
	}
}
