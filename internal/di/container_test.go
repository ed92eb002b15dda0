package di

import (
	"context"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/di/providers"
	"github.com/bookblog/bookblog-server/internal/service"
)

func testFlags(t *testing.T) config.Flags {
	t.Helper()
	return config.Flags{
		DataPath: t.TempDir(),
		Port:     "0",
		LogLevel: "error",
		EnvFile:  "",
	}
}

func TestBootstrap_CreatesDefaultAdmin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "first-run-secret")
	injector := NewContainer(testFlags(t))
	require.NoError(t, Bootstrap(injector))
	t.Cleanup(func() { _ = injector.Shutdown() })

	authService := do.MustInvoke[*service.AuthService](injector)
	assert.Equal(t, 1, authService.CountAdmins(context.Background()))

	result, err := authService.Login(context.Background(), "admin", "first-run-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	handle := do.MustInvoke[*providers.HTTPServerHandle](injector)
	assert.Equal(t, ":0", handle.Addr)
}

func TestContainer_RemoteDisabledByDefault(t *testing.T) {
	t.Setenv("REMOTE_BACKUP_ENDPOINT", "")
	injector := NewContainer(testFlags(t))
	t.Cleanup(func() { _ = injector.Shutdown() })

	backups := do.MustInvoke[*backup.BackupService](injector)
	assert.False(t, backups.RemoteEnabled())
}

func TestContainer_InvalidConfig(t *testing.T) {
	flags := testFlags(t)
	flags.Env = "qa"
	injector := NewContainer(flags)

	_, err := do.Invoke[*config.Config](injector)
	assert.ErrorContains(t, err, "invalid environment")
}
