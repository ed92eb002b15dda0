package auth

import (
	"time"

	"github.com/bookblog/bookblog-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// v4.local tokens are encrypted, so these are not readable without the key.
type AccessClaims struct {
	UserID   string      `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity returns the principal carried by the token.
func (c *AccessClaims) Identity() *domain.Identity {
	return &domain.Identity{ID: c.UserID, Username: c.Username, Role: c.Role}
}
