package auth

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/id"
)

const (
	tokenIssuer   = "bookblog-server"
	tokenAudience = "bookblog-client"
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	symmetricKey        paseto.V4SymmetricKey
	accessTokenDuration time.Duration
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:        symmetricKey,
		accessTokenDuration: accessDuration,
	}, nil
}

// GenerateAccessToken creates an encrypted access token for identity.
func (s *TokenService) GenerateAccessToken(identity *domain.Identity) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.accessTokenDuration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(identity.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("user_id", identity.ID)
	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("username", identity.Username)
	//nolint:errcheck // Token.Set only errors on unmarshalable values
	_ = token.Set("role", string(identity.Role))

	return token.V4Encrypt(s.symmetricKey, nil), expires, nil
}

// VerifyAccessToken decrypts and validates a token.
// Returns the claims if valid, or an error if invalid or expired.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}
