package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/backup/remote"
	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/logger"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/service"
	"github.com/bookblog/bookblog-server/internal/store"
)

// ProvideCatalogService provides the book and comment service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	s := do.MustInvoke[*store.Store](i)
	processor := do.MustInvoke[*images.CoverProcessor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(s, processor, log.WithComponent("catalog").Logger), nil
}

// ProvideArchiver provides the document export, import and archive builder.
func ProvideArchiver(i do.Injector) (*backup.Archiver, error) {
	s := do.MustInvoke[*store.Store](i)
	covers := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewArchiver(s, covers, log.WithComponent("backup").Logger), nil
}

// RemoteStoreHandle holds the off-site bucket, nil when not configured.
type RemoteStoreHandle struct {
	Store *remote.Store
}

// ProvideRemoteStore provides the S3-compatible backup bucket.
func ProvideRemoteStore(i do.Injector) (*RemoteStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	rc := cfg.Backup.Remote
	if !rc.Enabled() {
		log.Debug("Remote backups disabled")
		return &RemoteStoreHandle{}, nil
	}

	client, err := remote.NewClient(remote.Config{
		Endpoint:  rc.Endpoint,
		AccessKey: rc.AccessKey,
		SecretKey: rc.SecretKey,
		Bucket:    rc.Bucket,
		Region:    rc.Region,
		Prefix:    rc.Prefix,
		UseSSL:    rc.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("remote backup client: %w", err)
	}

	log.Info("Remote backups enabled", "endpoint", rc.Endpoint, "bucket", rc.Bucket)
	return &RemoteStoreHandle{
		Store: remote.New(client, rc.Bucket, rc.Prefix, log.WithComponent("remote").Logger),
	}, nil
}

// ProvideBackupService provides the managed backup catalog.
func ProvideBackupService(i do.Injector) (*backup.BackupService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	archiver := do.MustInvoke[*backup.Archiver](i)
	remoteHandle := do.MustInvoke[*RemoteStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewBackupService(archiver, cfg.Storage.BackupsPath(), remoteHandle.Store, log.WithComponent("backup").Logger), nil
}

// PruneCommentsOnStart removes comments whose book no longer exists.
func PruneCommentsOnStart(i do.Injector) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*logger.Logger](i)

	n, err := catalog.PruneOrphanComments(context.Background())
	switch {
	case err != nil:
		log.Warn("Orphan comment pruning failed", "error", err)
	case n > 0:
		log.Info("Pruned orphan comments", "count", n)
	}
}
