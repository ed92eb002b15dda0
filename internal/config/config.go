// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Backup  BackupConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig locates the flat-file data directory.
type StorageConfig struct {
	// DataPath holds books.json, comments.json, users.json, covers/ and backups/.
	DataPath string
}

// CoversPath returns the cover asset directory.
func (s StorageConfig) CoversPath() string {
	return filepath.Join(s.DataPath, "covers")
}

// BackupsPath returns the directory for managed backup archives.
func (s StorageConfig) BackupsPath() string {
	return filepath.Join(s.DataPath, "backups")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // default: 8080
	ReadTimeout    time.Duration // default: 15s
	WriteTimeout   time.Duration // default: 60s, archives can be large
	IdleTimeout    time.Duration // default: 60s
	CORSOrigins    []string
	MaxUploadBytes int64 // multipart limit for covers, imports and restores
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key, set by auth.LoadOrGenerateKey at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration

	// Default administrator materialized on first run.
	AdminUsername string
	AdminPassword string

	// LoginAttempts per username per minute.
	LoginAttempts int
}

// BackupConfig holds backup archive configuration.
type BackupConfig struct {
	Notes  string
	Remote RemoteConfig
}

// RemoteConfig configures off-site shipping of backup archives to an
// S3-compatible bucket. Disabled unless Endpoint is set.
type RemoteConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether remote backups are configured.
func (r RemoteConfig) Enabled() bool {
	return r.Endpoint != ""
}

// Flags holds command-line overrides. Empty values fall through to the
// environment, then the .env file, then defaults.
type Flags struct {
	Env                 string
	LogLevel            string
	DataPath            string
	Port                string
	ReadTimeout         string
	WriteTimeout        string
	IdleTimeout         string
	AccessTokenDuration string
	AdminUsername       string
	BackupNotes         string
	EnvFile             string
}

// Register binds the override flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.DataPath, "data-path", "", "Directory holding the JSON documents and covers")
	fs.StringVar(&f.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&f.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 60s)")
	fs.StringVar(&f.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&f.AccessTokenDuration, "access-token-duration", "", "Access token lifetime (e.g., 12h)")
	fs.StringVar(&f.AdminUsername, "admin-username", "", "Default administrator username")
	fs.StringVar(&f.BackupNotes, "backup-notes", "", "Default notes written into backup manifests")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
}

// Load builds the configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(flags Flags) (*Config, error) {
	if flags.EnvFile != "" {
		// godotenv.Load never overrides variables already present in the environment.
		if err := godotenv.Load(flags.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", flags.EnvFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(flags.LogLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(flags.DataPath, "DATA_PATH", "data"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(flags.Port, "SERVER_PORT", "8080"),
			CORSOrigins:    splitList(getConfigValue("", "CORS_ORIGINS", "*")),
			MaxUploadBytes: int64(getIntConfigValue("", "MAX_UPLOAD_MB", 64)) << 20,
		},
		Auth: AuthConfig{
			AdminUsername: getConfigValue(flags.AdminUsername, "ADMIN_USERNAME", "admin"),
			AdminPassword: getConfigValue("", "ADMIN_PASSWORD", ""),
			LoginAttempts: getIntConfigValue("", "LOGIN_ATTEMPTS_PER_MINUTE", 10),
		},
		Backup: BackupConfig{
			Notes: getConfigValue(flags.BackupNotes, "BACKUP_NOTES", ""),
			Remote: RemoteConfig{
				Endpoint:  getConfigValue("", "REMOTE_BACKUP_ENDPOINT", ""),
				AccessKey: getConfigValue("", "REMOTE_BACKUP_ACCESS_KEY", ""),
				SecretKey: getConfigValue("", "REMOTE_BACKUP_SECRET_KEY", ""),
				Bucket:    getConfigValue("", "REMOTE_BACKUP_BUCKET", ""),
				Region:    getConfigValue("", "REMOTE_BACKUP_REGION", ""),
				Prefix:    getConfigValue("", "REMOTE_BACKUP_PREFIX", "bookblog/"),
				UseSSL:    getBoolConfigValue("", "REMOTE_BACKUP_USE_SSL", true),
			},
		},
	}

	durations := []struct {
		flag, env, def string
		dst            *time.Duration
	}{
		{flags.AccessTokenDuration, "ACCESS_TOKEN_DURATION", "12h", &cfg.Auth.AccessTokenDuration},
		{flags.ReadTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{flags.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{flags.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dst = parsed
	}

	expanded, err := expandPath(cfg.Storage.DataPath)
	if err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	cfg.Storage.DataPath = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty")
	}

	if strings.TrimSpace(c.Auth.AdminUsername) == "" {
		return errors.New("admin username cannot be empty")
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}

	if c.Backup.Remote.Enabled() && c.Backup.Remote.Bucket == "" {
		return errors.New("REMOTE_BACKUP_BUCKET is required when REMOTE_BACKUP_ENDPOINT is set")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
