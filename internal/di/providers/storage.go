package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/logger"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/store"
)

// ProvideStore provides the flat-file document store, creating the data
// directory layout on first use.
func ProvideStore(i do.Injector) (*store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	s := store.New(cfg.Storage.DataPath, log.WithComponent("store").Logger)
	if err := s.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("init data directory: %w", err)
	}

	log.Info("Data directory ready", "path", s.DataDir())
	return s, nil
}

// ProvideCoverStorage provides the cover image directory.
func ProvideCoverStorage(i do.Injector) (*images.Storage, error) {
	s := do.MustInvoke[*store.Store](i)

	covers, err := images.NewStorage(s.CoversDir())
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}
	return covers, nil
}

// ProvideCoverProcessor provides the cover normalizer.
func ProvideCoverProcessor(i do.Injector) (*images.CoverProcessor, error) {
	covers := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewCoverProcessor(covers, log.WithComponent("covers").Logger), nil
}
