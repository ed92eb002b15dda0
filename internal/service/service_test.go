package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/store"
	"github.com/stretchr/testify/require"
)

// setupStore creates an initialized store in a temp directory.
func setupStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "data"), nil)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func setupCatalogTest(t *testing.T) (*CatalogService, *store.Store) {
	t.Helper()
	s := setupStore(t)
	covers, err := images.NewStorage(s.CoversDir())
	require.NoError(t, err)
	return NewCatalogService(s, images.NewCoverProcessor(covers, nil), nil), s
}
