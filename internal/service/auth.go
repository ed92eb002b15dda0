package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bookblog/bookblog-server/internal/auth"
	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/bookblog/bookblog-server/internal/id"
	"github.com/bookblog/bookblog-server/internal/ratelimit"
	"github.com/bookblog/bookblog-server/internal/store"
	"golang.org/x/text/cases"
)

// Hashed on unknown usernames so a miss costs about as much as a mismatch.
// Computed on first use to keep argon2 out of package init.
var dummyCredentials = sync.OnceValues(func() ([]byte, []byte) {
	salt, digest, _ := auth.HashPassword("bookblog-timing-equalizer", make([]byte, auth.SaltLength))
	return salt, digest
})

// AuthService manages accounts and verifies credentials. It keeps no session
// state; Login hands out stateless access tokens. Without a token service
// only account management works, and a nil limiter disables login throttling.
type AuthService struct {
	store   *store.Store
	tokens  *auth.TokenService
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokens *auth.TokenService,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
	}
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	User        *domain.Identity `json:"user"`
}

// UsernameKey folds a username for case-insensitive comparison.
// cases.Caser is stateful, so a fresh one is built per call.
func UsernameKey(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}

// CreateUser registers a new account. Usernames are unique under Unicode
// case folding; a collision yields DuplicateUser. Role defaults to user.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.Validation("username is required")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, errors.Validationf("invalid role %q (must be user or admin)", role)
	}

	// Hash before taking the document lock; argon2 is deliberately slow.
	salt, digest, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	userID, err := id.User()
	if err != nil {
		return nil, errors.Internal("generate user ID").WithCause(err)
	}

	user := domain.User{
		Record:       domain.Record{ID: userID},
		Username:     username,
		Salt:         salt,
		PasswordHash: digest,
		Role:         role,
	}
	user.InitTimestamps()

	key := UsernameKey(username)
	err = s.store.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if UsernameKey(u.Username) == key {
				return nil, errors.DuplicateUser(username)
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return &user, nil
}

// Authenticate checks credentials. A missing user or a wrong password both
// yield (nil, nil); only infrastructure failures are errors.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user := s.findByUsername(ctx, username)
	if user == nil {
		salt, digest := dummyCredentials()
		auth.VerifyPassword(salt, digest, password)
		return nil, nil
	}
	if !auth.VerifyPassword(user.Salt, user.PasswordHash, password) {
		return nil, nil
	}
	return user.Identity(), nil
}

// Login authenticates and issues an access token. Attempts are throttled
// per folded username.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, errors.Internal("token service not configured")
	}

	key := UsernameKey(username)
	if s.limiter != nil && !s.limiter.Allow(key) {
		s.logger.Warn("login throttled", "username", username)
		return nil, errors.TooManyRequests("too many login attempts, try again later")
	}

	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, errors.InvalidCredentials("invalid username or password")
	}

	token, expires, err := s.tokens.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	if s.limiter != nil {
		s.limiter.Reset(key)
	}

	s.logger.Info("user logged in", "user_id", identity.ID, "username", identity.Username)
	return &LoginResult{AccessToken: token, ExpiresAt: expires, User: identity}, nil
}

// VerifyToken resolves an access token to the identity it carries.
func (s *AuthService) VerifyToken(token string) (*domain.Identity, error) {
	if s.tokens == nil {
		return nil, errors.Internal("token service not configured")
	}
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return claims.Identity(), nil
}

// ResetPassword replaces the salt and digest of a user.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	salt, digest, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.store.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		i := indexUser(users, userID)
		if i < 0 {
			return nil, errors.NotFoundf("user %s not found", userID)
		}
		users[i].Salt = salt
		users[i].PasswordHash = digest
		return users, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset", "user_id", userID)
	return nil
}

// DeleteUser removes a user without policy checks. Callers enforce the
// not-self and not-last-admin rules, see CanDelete and DeleteUserAs.
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	err := s.store.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		i := indexUser(users, userID)
		if i < 0 {
			return nil, errors.NotFoundf("user %s not found", userID)
		}
		return slices.Delete(users, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// DeleteUserAs applies the deletion policy for actor and deletes the target
// under a single document lock, so two admins cannot remove each other.
func (s *AuthService) DeleteUserAs(ctx context.Context, actor *domain.Identity, userID string) error {
	err := s.store.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		if err := checkDelete(actor, users, userID); err != nil {
			return nil, err
		}
		i := indexUser(users, userID)
		return slices.Delete(users, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID, "by", actor.Username)
	return nil
}

// CanDelete reports whether actor may delete the target account: actor must
// be an admin, must not be the target, and must not remove the last admin.
func (s *AuthService) CanDelete(ctx context.Context, actor *domain.Identity, userID string) error {
	return checkDelete(actor, s.store.Users.Load(ctx), userID)
}

func checkDelete(actor *domain.Identity, users []domain.User, userID string) error {
	if !actor.IsAdmin() {
		return errors.Forbidden("admin role required")
	}
	if actor.ID == userID {
		return errors.Forbidden("you cannot delete your own account")
	}
	i := indexUser(users, userID)
	if i < 0 {
		return errors.NotFoundf("user %s not found", userID)
	}
	if users[i].IsAdmin() && countAdmins(users) <= 1 {
		return errors.Forbidden("cannot delete the last administrator")
	}
	return nil
}

// ListUsers returns every account in document order.
func (s *AuthService) ListUsers(ctx context.Context) []domain.User {
	return s.store.Users.Load(ctx)
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	users := s.store.Users.Load(ctx)
	if i := indexUser(users, userID); i >= 0 {
		return &users[i], nil
	}
	return nil, errors.NotFoundf("user %s not found", userID)
}

// GetUserByUsername finds a user by case-insensitive username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u := s.findByUsername(ctx, username); u != nil {
		return u, nil
	}
	return nil, errors.NotFoundf("user %q not found", username)
}

// CountAdmins returns the number of admin accounts.
func (s *AuthService) CountAdmins(ctx context.Context) int {
	return countAdmins(s.store.Users.Load(ctx))
}

// EnsureDefaultAdmin creates the initial administrator when no users
// document exists yet. With an empty password a random one is generated and
// returned so the caller can show it once. created is false when the
// document already existed.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) (created bool, generated string, err error) {
	if s.store.Users.Exists() {
		return false, "", nil
	}

	if password == "" {
		raw := make([]byte, 12)
		if _, err := rand.Read(raw); err != nil {
			return false, "", fmt.Errorf("generate admin password: %w", err)
		}
		password = base64.RawURLEncoding.EncodeToString(raw)
		generated = password
	}

	if _, err := s.CreateUser(ctx, username, password, domain.RoleAdmin); err != nil {
		return false, "", fmt.Errorf("create default admin: %w", err)
	}

	s.logger.Info("default administrator created", "username", username)
	return true, generated, nil
}

func (s *AuthService) findByUsername(ctx context.Context, username string) *domain.User {
	key := UsernameKey(username)
	if key == "" {
		return nil
	}
	users := s.store.Users.Load(ctx)
	for i := range users {
		if UsernameKey(users[i].Username) == key {
			return &users[i]
		}
	}
	return nil
}

func hashPassword(password string) (salt, digest []byte, err error) {
	salt, digest, err = auth.HashPassword(password, nil)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword):
		return nil, nil, errors.Validation("password is required")
	case errors.Is(err, auth.ErrPasswordTooLong):
		return nil, nil, errors.Validation("password exceeds maximum length")
	case err != nil:
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	return salt, digest, nil
}

func indexUser(users []domain.User, userID string) int {
	return slices.IndexFunc(users, func(u domain.User) bool { return u.ID == userID })
}

func countAdmins(users []domain.User) int {
	n := 0
	for _, u := range users {
		if u.IsAdmin() {
			n++
		}
	}
	return n
}
