package api

import (
	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/service"
)

// Services groups the application services used by the HTTP handlers.
type Services struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Archive *backup.Archiver
	Backups *backup.BackupService
}
