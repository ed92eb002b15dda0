package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/srv/bookblog"},
		Auth:    AuthConfig{AdminUsername: "admin", AccessTokenDuration: time.Hour},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RemoteRequiresBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Backup.Remote.Endpoint = "s3.example.com"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMOTE_BACKUP_BUCKET")

	cfg.Backup.Remote.Bucket = "backups"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load(Flags{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(64<<20), cfg.Server.MaxUploadBytes)
	assert.False(t, cfg.Backup.Remote.Enabled())

	// Relative default resolved against the working directory.
	assert.True(t, filepath.IsAbs(cfg.Storage.DataPath))
	assert.Equal(t, "data", filepath.Base(cfg.Storage.DataPath))
	assert.Equal(t, filepath.Join(cfg.Storage.DataPath, "covers"), cfg.Storage.CoversPath())
	assert.Equal(t, filepath.Join(cfg.Storage.DataPath, "backups"), cfg.Storage.BackupsPath())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\nSERVER_PORT=7000\nLOG_LEVEL=debug\nBACKUP_NOTES=\"from dotenv\"\n",
	), 0o600))

	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load(Flags{EnvFile: envFile, Port: "", DataPath: dir})
	require.NoError(t, err)

	// env beats .env
	assert.Equal(t, "9000", cfg.Server.Port)
	// .env beats default
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "from dotenv", cfg.Backup.Notes)

	cfg, err = Load(Flags{EnvFile: envFile, Port: "8181", DataPath: dir})
	require.NoError(t, err)

	// flag beats env
	assert.Equal(t, "8181", cfg.Server.Port)

	// godotenv sets variables process-wide; clear them for later tests.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BACKUP_NOTES", "")
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Flags{EnvFile: filepath.Join(dir, "nope.env"), DataPath: dir})
	assert.NoError(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Flags{DataPath: dir, AccessTokenDuration: "forever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_DURATION")
}

func TestLoad_RemoteBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("REMOTE_BACKUP_ENDPOINT", "localhost:9000")
	t.Setenv("REMOTE_BACKUP_BUCKET", "bookblog")
	t.Setenv("REMOTE_BACKUP_USE_SSL", "no")

	cfg, err := Load(Flags{DataPath: dir})
	require.NoError(t, err)

	assert.True(t, cfg.Backup.Remote.Enabled())
	assert.Equal(t, "bookblog", cfg.Backup.Remote.Bucket)
	assert.Equal(t, "bookblog/", cfg.Backup.Remote.Prefix)
	assert.False(t, cfg.Backup.Remote.UseSSL)
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/bookblog")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bookblog"), got)
}

func TestFlags_Register(t *testing.T) {
	var flags Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Register(fs)

	require.NoError(t, fs.Parse([]string{"--data-path", "/tmp/x", "--port", "1234"}))

	assert.Equal(t, "/tmp/x", flags.DataPath)
	assert.Equal(t, "1234", flags.Port)
	assert.Equal(t, ".env", flags.EnvFile)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
