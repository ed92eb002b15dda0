package backup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/store"
)

func TestBackupService_SameSecondGetsDistinctIDs(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	s := store.New(dataDir, nil)
	require.NoError(t, s.Init(context.Background()))
	covers, err := images.NewStorage(s.CoversDir())
	require.NoError(t, err)

	svc := NewBackupService(NewArchiver(s, covers, nil), filepath.Join(dataDir, "backups"), nil, nil)
	fixed := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	first, err := svc.Create(context.Background(), BackupOptions{})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), BackupOptions{})
	require.NoError(t, err)

	assert.Equal(t, "backup-2024-03-09-140506", first.ID)
	assert.Equal(t, "backup-2024-03-09-140506-2", second.ID)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.jpg", baseName("data/covers/a.jpg"))
	assert.Equal(t, "evil.jpg", baseName("data/covers/../../evil.jpg"))
	assert.Equal(t, "win.jpg", baseName(`data\covers\win.jpg`))
}
