package api

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/backup/remote"
	"github.com/bookblog/bookblog-server/internal/http/response"
)

func (s *Server) registerAdminBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/export/{collection}",
		Summary:     "Export collection",
		Description: "Downloads the raw JSON document of one collection (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExportCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadFreshBackup",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backup",
		Summary:     "Download fresh backup",
		Description: "Builds an archive of the whole catalog and streams it without keeping a copy (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDownloadFreshBackup)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/backups",
		Summary:       "Create backup",
		Description:   "Writes a new archive to the backups directory, optionally uploading it (admin only)",
		Tags:          []string{"Admin", "Backup"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Description: "Lists stored backup archives, newest first (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRemoteBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups/remote",
		Summary:     "List remote backups",
		Description: "Lists archives stored in the off-site bucket (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRemoteBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBackup",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups/{id}",
		Summary:     "Get backup details",
		Description: "Gets details of a specific backup (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadBackup",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups/{id}/download",
		Summary:     "Download backup",
		Description: "Downloads a stored backup archive (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDownloadBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/backups/{id}",
		Summary:     "Delete backup",
		Description: "Deletes a stored backup archive (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{id}/upload",
		Summary:     "Upload backup",
		Description: "Ships a stored archive to the off-site bucket (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateStoredBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{id}/validate",
		Summary:     "Validate backup",
		Description: "Checks a stored archive without restoring it (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleValidateStoredBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreStoredBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups/{id}/restore",
		Summary:     "Restore stored backup",
		Description: "Restores the catalog from a stored archive (admin only)",
		Tags:        []string{"Admin", "Backup"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreStoredBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "pruneComments",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/maintenance/prune-comments",
		Summary:     "Prune orphan comments",
		Description: "Deletes comments whose book no longer exists (admin only)",
		Tags:        []string{"Admin", "Maintenance"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePruneComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "repairCoverPaths",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/maintenance/repair-covers",
		Summary:     "Repair cover paths",
		Description: "Rewrites bare cover file names on books to data-relative paths (admin only)",
		Tags:        []string{"Admin", "Maintenance"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRepairCoverPaths)

	// Multipart uploads: plain chi handlers.
	s.router.Post("/api/v1/admin/import/{collection}", s.handleImportCollection)
	s.router.Post("/api/v1/admin/restore", s.handleRestoreUpload)
	s.router.Post("/api/v1/admin/backups/validate", s.handleValidateUpload)
}

// === DTOs ===

// ExportCollectionInput names the collection to export.
type ExportCollectionInput struct {
	Authorization string `header:"Authorization"`
	Collection    string `path:"collection" enum:"books,comments" doc:"Collection name"`
}

// FreshBackupInput configures an on-the-fly archive.
type FreshBackupInput struct {
	Authorization string `header:"Authorization"`
	Notes         string `query:"notes" doc:"Manifest notes, defaults to the configured note"`
}

// CreateBackupRequest is the request body for creating a backup.
type CreateBackupRequest struct {
	Notes  string `json:"notes,omitempty" validate:"max=500" doc:"Manifest notes"`
	Upload bool   `json:"upload,omitempty" doc:"Also upload the archive to the off-site bucket"`
}

// CreateBackupInput is the Huma input for creating a backup.
type CreateBackupInput struct {
	Authorization string              `header:"Authorization"`
	Body          CreateBackupRequest `required:"false"`
}

// ManifestResponse mirrors an archive manifest.
type ManifestResponse struct {
	Version     int       `json:"version" doc:"Archive format version"`
	GeneratedAt time.Time `json:"generated_at" doc:"When the archive was generated"`
	Notes       string    `json:"notes" doc:"Free-form notes"`
}

// CountsResponse counts archive contents.
type CountsResponse struct {
	Books    int `json:"books" doc:"Number of books"`
	Comments int `json:"comments" doc:"Number of comments"`
	Covers   int `json:"covers" doc:"Number of cover files"`
}

// BackupResponse represents a backup in API responses.
type BackupResponse struct {
	ID        string            `json:"id" doc:"Backup identifier"`
	Path      string            `json:"path" doc:"Backup file path"`
	Size      int64             `json:"size" doc:"Backup file size in bytes"`
	CreatedAt time.Time         `json:"created_at" doc:"When the backup was created"`
	Checksum  string            `json:"checksum,omitempty" doc:"SHA-256 checksum"`
	Manifest  *ManifestResponse `json:"manifest,omitempty" doc:"Manifest written into the archive"`
	Counts    *CountsResponse   `json:"counts,omitempty" doc:"Archived entity counts"`
	Remote    string            `json:"remote,omitempty" doc:"Object key in the off-site bucket"`
	Duration  string            `json:"duration,omitempty" doc:"Time taken to build the archive"`
}

// BackupOutput is the Huma output for a single backup.
type BackupOutput struct {
	Body BackupResponse
}

// ListBackupsInput is the Huma input for listing backups.
type ListBackupsInput struct {
	Authorization string `header:"Authorization"`
}

// ListBackupsResponse lists stored backups.
type ListBackupsResponse struct {
	Backups []BackupResponse `json:"backups" doc:"Backups, newest first"`
	Total   int              `json:"total" doc:"Number of backups"`
}

// ListBackupsOutput is the Huma output for listing backups.
type ListBackupsOutput struct {
	Body ListBackupsResponse
}

// RemoteObjectResponse represents an archive in the off-site bucket.
type RemoteObjectResponse struct {
	Key          string    `json:"key" doc:"Object key"`
	Name         string    `json:"name" doc:"Archive file name"`
	Size         int64     `json:"size" doc:"Object size in bytes"`
	LastModified time.Time `json:"last_modified" doc:"Upload time"`
}

// ListRemoteBackupsResponse lists remote archives.
type ListRemoteBackupsResponse struct {
	Objects []RemoteObjectResponse `json:"objects" doc:"Remote archives, newest first"`
	Total   int                    `json:"total" doc:"Number of archives"`
}

// ListRemoteBackupsOutput is the Huma output for listing remote backups.
type ListRemoteBackupsOutput struct {
	Body ListRemoteBackupsResponse
}

// RemoteObjectOutput is the Huma output for a single upload.
type RemoteObjectOutput struct {
	Body RemoteObjectResponse
}

// BackupIDInput addresses a stored backup.
type BackupIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Backup identifier"`
}

// RestoreStoredBackupInput addresses a stored backup and a mode.
type RestoreStoredBackupInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Backup identifier"`
	Mode          string `query:"mode" enum:"replace,merge" default:"merge" doc:"replace overwrites each collection; merge reconciles by ID"`
}

// ImportResponse reports what importing one collection did.
type ImportResponse struct {
	Collection string `json:"collection" doc:"Imported collection"`
	Mode       string `json:"mode" doc:"Import mode"`
	Imported   int    `json:"imported" doc:"Records in the uploaded document"`
	Total      int    `json:"total" doc:"Records in the collection afterwards"`
	Replaced   int    `json:"replaced" doc:"Existing records overwritten by ID"`
	Added      int    `json:"added" doc:"Records appended"`
}

// RestoreResponse is the API response for restore operations.
type RestoreResponse struct {
	Mode               string            `json:"mode" doc:"Restore mode"`
	Manifest           *ManifestResponse `json:"manifest,omitempty" doc:"Manifest found in the archive"`
	Covers             int               `json:"covers" doc:"Cover files written"`
	Books              *ImportResponse   `json:"books,omitempty" doc:"Books import outcome, absent when the archive has none"`
	Comments           *ImportResponse   `json:"comments,omitempty" doc:"Comments import outcome, absent when the archive has none"`
	CoverPathsRepaired int               `json:"cover_paths_repaired" doc:"Books whose bare cover name was rewritten"`
	Skipped            []string          `json:"skipped,omitempty" doc:"Archive entries ignored as unsafe"`
	Duration           string            `json:"duration" doc:"Total restore duration"`
}

// RestoreOutput is the Huma output for restore operations.
type RestoreOutput struct {
	Body RestoreResponse
}

// ValidationResponse is the API response for backup validation.
type ValidationResponse struct {
	Valid    bool              `json:"valid" doc:"Whether the archive can be restored"`
	Manifest *ManifestResponse `json:"manifest,omitempty" doc:"Manifest found in the archive"`
	Counts   CountsResponse    `json:"counts" doc:"Entity counts found"`
	Errors   []string          `json:"errors,omitempty" doc:"Validation errors"`
	Warnings []string          `json:"warnings,omitempty" doc:"Validation warnings"`
}

// ValidateBackupOutput is the Huma output for validating a backup.
type ValidateBackupOutput struct {
	Body ValidationResponse
}

// MaintenanceInput is the Huma input for maintenance actions.
type MaintenanceInput struct {
	Authorization string `header:"Authorization"`
}

// MaintenanceResponse reports how many records a maintenance action touched.
type MaintenanceResponse struct {
	Affected int `json:"affected" doc:"Records removed or rewritten"`
}

// MaintenanceOutput is the Huma output for maintenance actions.
type MaintenanceOutput struct {
	Body MaintenanceResponse
}

// === Handlers ===

func (s *Server) handleExportCollection(ctx context.Context, input *ExportCollectionInput) (*huma.StreamResponse, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	c, err := backup.ParseCollection(input.Collection)
	if err != nil {
		return nil, err
	}
	data, err := s.services.Archive.ExportDocument(ctx, c)
	if err != nil {
		return nil, err
	}

	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			hctx.SetHeader("Content-Type", "application/json")
			hctx.SetHeader("Content-Disposition", attachment(string(c)+".json"))
			if _, err := hctx.BodyWriter().Write(data); err != nil {
				s.logger.Warn("export download interrupted", "collection", c, "error", err)
			}
		},
	}, nil
}

func (s *Server) handleDownloadFreshBackup(ctx context.Context, input *FreshBackupInput) (*huma.StreamResponse, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	data, err := s.services.Archive.MakeBackup(ctx, cmp.Or(input.Notes, s.opts.BackupNotes))
	if err != nil {
		return nil, err
	}

	name := "bookblog-" + time.Now().UTC().Format("2006-01-02-150405") + backup.FileSuffix
	return zipStream(name, bytes.NewReader(data), s), nil
}

func (s *Server) handleCreateBackup(ctx context.Context, input *CreateBackupInput) (*BackupOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	result, err := s.services.Backups.Create(ctx, backup.BackupOptions{
		Notes:  cmp.Or(input.Body.Notes, s.opts.BackupNotes),
		Upload: input.Body.Upload,
	})
	if err != nil {
		return nil, err
	}

	manifest := mapManifest(&result.Manifest)
	counts := mapCounts(result.Counts)
	return &BackupOutput{
		Body: BackupResponse{
			ID:        result.ID,
			Path:      result.Path,
			Size:      result.Size,
			CreatedAt: result.Manifest.GeneratedAt,
			Checksum:  result.Checksum,
			Manifest:  manifest,
			Counts:    &counts,
			Remote:    result.Remote,
			Duration:  result.Duration.String(),
		},
	}, nil
}

func (s *Server) handleListBackups(ctx context.Context, _ *ListBackupsInput) (*ListBackupsOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	backups, err := s.services.Backups.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]BackupResponse, len(backups))
	for i := range backups {
		resp[i] = mapBackupInfo(&backups[i])
	}
	return &ListBackupsOutput{Body: ListBackupsResponse{Backups: resp, Total: len(resp)}}, nil
}

func (s *Server) handleListRemoteBackups(ctx context.Context, _ *ListBackupsInput) (*ListRemoteBackupsOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	objects, err := s.services.Backups.ListRemote(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RemoteObjectResponse, len(objects))
	for i := range objects {
		resp[i] = mapRemoteObject(&objects[i])
	}
	return &ListRemoteBackupsOutput{Body: ListRemoteBackupsResponse{Objects: resp, Total: len(resp)}}, nil
}

func (s *Server) handleGetBackup(ctx context.Context, input *BackupIDInput) (*BackupOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	info, err := s.services.Backups.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BackupOutput{Body: mapBackupInfo(info)}, nil
}

func (s *Server) handleDownloadBackup(ctx context.Context, input *BackupIDInput) (*huma.StreamResponse, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	rc, info, err := s.services.Backups.Open(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	stream := zipStream(info.ID+backup.FileSuffix, rc, s)
	body := stream.Body
	stream.Body = func(hctx huma.Context) {
		defer rc.Close()
		hctx.SetHeader("Content-Length", fmt.Sprint(info.Size))
		body(hctx)
	}
	return stream, nil
}

func (s *Server) handleDeleteBackup(ctx context.Context, input *BackupIDInput) (*AdminMessageOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Backups.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &AdminMessageOutput{Body: MessageResponse{Message: "Backup deleted"}}, nil
}

func (s *Server) handleUploadBackup(ctx context.Context, input *BackupIDInput) (*RemoteObjectOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	obj, err := s.services.Backups.Upload(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RemoteObjectOutput{Body: mapRemoteObject(obj)}, nil
}

func (s *Server) handleValidateStoredBackup(ctx context.Context, input *BackupIDInput) (*ValidateBackupOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	data, err := s.services.Backups.Read(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	result, err := s.services.Archive.Validate(ctx, data)
	if err != nil {
		return nil, err
	}
	return &ValidateBackupOutput{Body: mapValidation(result)}, nil
}

func (s *Server) handleRestoreStoredBackup(ctx context.Context, input *RestoreStoredBackupInput) (*RestoreOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	mode, err := backup.ParseMode(input.Mode)
	if err != nil {
		return nil, err
	}
	data, err := s.services.Backups.Read(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Archive.RestoreBackup(ctx, data, mode)
	if err != nil {
		return nil, err
	}
	return &RestoreOutput{Body: mapRestore(result)}, nil
}

func (s *Server) handlePruneComments(ctx context.Context, _ *MaintenanceInput) (*MaintenanceOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	n, err := s.services.Catalog.PruneOrphanComments(ctx)
	if err != nil {
		return nil, err
	}
	return &MaintenanceOutput{Body: MaintenanceResponse{Affected: n}}, nil
}

func (s *Server) handleRepairCoverPaths(ctx context.Context, _ *MaintenanceInput) (*MaintenanceOutput, error) {
	if _, err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	n, err := s.services.Archive.RepairCoverPaths(ctx)
	if err != nil {
		return nil, err
	}
	return &MaintenanceOutput{Body: MaintenanceResponse{Affected: n}}, nil
}

// handleImportCollection loads a raw collection document from the "file"
// part. POST /api/v1/admin/import/{collection}?mode=replace|merge
func (s *Server) handleImportCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	c, err := backup.ParseCollection(chi.URLParam(r, "collection"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	mode, err := backup.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	data, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	result, err := s.services.Archive.ImportDocument(ctx, c, data, mode)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, mapImport(result), s.logger)
}

// handleRestoreUpload restores from an uploaded archive.
// POST /api/v1/admin/restore?mode=replace|merge
func (s *Server) handleRestoreUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	mode, err := backup.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	data, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	result, err := s.services.Archive.RestoreBackup(ctx, data, mode)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, mapRestore(result), s.logger)
}

// handleValidateUpload checks an uploaded archive without restoring it.
// POST /api/v1/admin/backups/validate
func (s *Server) handleValidateUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := RequireAdmin(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	data, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	result, err := s.services.Archive.Validate(ctx, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, mapValidation(result), s.logger)
}

// readUpload returns the content of a multipart file part. It writes the
// error response and returns false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	if !s.parseForm(w, r) {
		return nil, false
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		response.BadRequest(w, fmt.Sprintf("missing %q file", field), s.logger)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read upload", s.logger)
		return nil, false
	}
	return data, true
}

func zipStream(filename string, r io.Reader, s *Server) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(hctx huma.Context) {
			hctx.SetHeader("Content-Type", remote.ContentType)
			hctx.SetHeader("Content-Disposition", attachment(filename))
			if _, err := io.Copy(hctx.BodyWriter(), r); err != nil {
				s.logger.Warn("backup download interrupted", "file", filename, "error", err)
			}
		},
	}
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func mapManifest(m *backup.Manifest) *ManifestResponse {
	if m == nil {
		return nil
	}
	return &ManifestResponse{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Notes:       m.Notes,
	}
}

func mapCounts(c backup.EntityCounts) CountsResponse {
	return CountsResponse{Books: c.Books, Comments: c.Comments, Covers: c.Covers}
}

func mapBackupInfo(b *backup.BackupInfo) BackupResponse {
	return BackupResponse{
		ID:        b.ID,
		Path:      b.Path,
		Size:      b.Size,
		CreatedAt: b.CreatedAt,
	}
}

func mapRemoteObject(o *remote.Object) RemoteObjectResponse {
	return RemoteObjectResponse{
		Key:          o.Key,
		Name:         o.Name,
		Size:         o.Size,
		LastModified: o.LastModified,
	}
}

func mapImport(r *backup.ImportResult) *ImportResponse {
	if r == nil {
		return nil
	}
	return &ImportResponse{
		Collection: string(r.Collection),
		Mode:       string(r.Mode),
		Imported:   r.Imported,
		Total:      r.Total,
		Replaced:   r.Replaced,
		Added:      r.Added,
	}
}

func mapRestore(r *backup.RestoreResult) RestoreResponse {
	return RestoreResponse{
		Mode:               string(r.Mode),
		Manifest:           mapManifest(r.Manifest),
		Covers:             r.Covers,
		Books:              mapImport(r.Books),
		Comments:           mapImport(r.Comments),
		CoverPathsRepaired: r.CoverPathsRepaired,
		Skipped:            r.Skipped,
		Duration:           r.Duration.String(),
	}
}

func mapValidation(r *backup.ValidationResult) ValidationResponse {
	return ValidationResponse{
		Valid:    r.Valid,
		Manifest: mapManifest(r.Manifest),
		Counts:   mapCounts(r.Counts),
		Errors:   r.Errors,
		Warnings: r.Warnings,
	}
}
