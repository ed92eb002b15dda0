package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookblog/bookblog-server/internal/auth"
	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/logger"
	"github.com/bookblog/bookblog-server/internal/ratelimit"
	"github.com/bookblog/bookblog-server/internal/service"
	"github.com/bookblog/bookblog-server/internal/store"
)

// AuthKey wraps the authentication key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded", "access_token_duration", cfg.Auth.AccessTokenDuration)
	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
}

// LoginLimiterHandle wraps the per-username login limiter with Shutdownable.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	if h.KeyedRateLimiter != nil {
		h.Stop()
	}
	return nil
}

// ProvideLoginLimiter provides the login throttle. A non-positive attempt
// budget disables it.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	n := cfg.Auth.LoginAttempts
	if n <= 0 {
		return &LoginLimiterHandle{}, nil
	}
	return &LoginLimiterHandle{ratelimit.New(ratelimit.PerMinute(n), n)}, nil
}

// ProvideAuthService provides the account service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	s := do.MustInvoke[*store.Store](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	limiter := do.MustInvoke[*LoginLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(s, tokens, limiter.KeyedRateLimiter, log.WithComponent("auth").Logger), nil
}

// EnsureDefaultAdmin materializes the configured administrator on first run.
// A generated password is logged once, since it cannot be recovered later.
func EnsureDefaultAdmin(i do.Injector) error {
	cfg := do.MustInvoke[*config.Config](i)
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	created, generated, err := authService.EnsureDefaultAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	if created && generated != "" {
		log.Warn("Generated administrator password, change it after first login",
			"username", cfg.Auth.AdminUsername,
			"password", generated,
		)
	}
	return nil
}
