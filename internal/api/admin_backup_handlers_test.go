package api

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/domain"
)

func zipEntries(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = b
	}
	return out
}

func TestExportCollection(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ts.addBook(t, nil, "Dune")

	resp := ts.api.Get("/api/v1/admin/export/books", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), `filename="books.json"`)

	onDisk, err := ts.services.Archive.ExportDocument(context.Background(), backup.CollectionBooks)
	require.NoError(t, err)
	assert.Equal(t, onDisk, resp.Body.Bytes())

	resp = ts.api.Get("/api/v1/admin/export/users", adminAuth)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	userAuth := ts.login(t, "alice", domain.RoleUser)
	resp = ts.api.Get("/api/v1/admin/export/books", userAuth)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestImportCollection_Merge(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ctx := context.Background()
	existing := ts.addBook(t, nil, "Old title")

	doc := []byte(`[
		{"id": "` + existing.ID + `", "created_at": "2024-01-01T00:00:00Z", "title": "New title", "author": "", "year": "", "tags": [], "description": "", "cover_path": ""},
		{"id": "book-imported", "created_at": "2024-01-02T00:00:00Z", "title": "Imported", "author": "", "year": "", "tags": [], "description": "", "cover_path": ""}
	]`)

	req := multipartRequest(t, "/api/v1/admin/import/books?mode=merge", nil,
		&filePart{field: "file", name: "books.json", data: doc})
	rec := ts.do(t, req, adminAuth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode[ImportResponse](t, rec.Body.Bytes())
	assert.Equal(t, "books", env.Data.Collection)
	assert.Equal(t, "merge", env.Data.Mode)
	assert.Equal(t, 2, env.Data.Imported)
	assert.Equal(t, 1, env.Data.Replaced)
	assert.Equal(t, 1, env.Data.Added)
	assert.Equal(t, 2, env.Data.Total)

	books := ts.store.Books.Load(ctx)
	require.Len(t, books, 2)
	assert.Equal(t, "New title", books[0].Title)
}

func TestImportCollection_Rejects(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	userAuth := ts.login(t, "alice", domain.RoleUser)
	file := &filePart{field: "file", name: "books.json", data: []byte(`[]`)}

	rec := ts.do(t, multipartRequest(t, "/api/v1/admin/import/books", nil, file), userAuth)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, multipartRequest(t, "/api/v1/admin/import/books?mode=append", nil, file), adminAuth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, multipartRequest(t, "/api/v1/admin/import/users", nil, file), adminAuth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, multipartRequest(t, "/api/v1/admin/import/books", nil, nil), adminAuth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	malformed := &filePart{field: "file", name: "books.json", data: []byte(`{"not": "a list"}`)}
	rec = ts.do(t, multipartRequest(t, "/api/v1/admin/import/books", nil, malformed), adminAuth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_DOCUMENT", decode[any](t, rec.Body.Bytes()).Error.Code)
}

func TestDownloadFreshBackup(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ts.addBook(t, nil, "Dune")

	resp := ts.api.Get("/api/v1/admin/backup?notes=nightly", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/zip", resp.Header().Get("Content-Type"))

	entries := zipEntries(t, resp.Body.Bytes())
	assert.Contains(t, entries, backup.ManifestEntry)
	assert.Contains(t, entries, backup.BooksEntry)
	assert.Contains(t, entries, backup.CommentsEntry)

	m, err := backup.ParseManifest(entries[backup.ManifestEntry])
	require.NoError(t, err)
	assert.Equal(t, "nightly", m.Notes)
}

func TestBackups_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ts.addBook(t, nil, "Dune")

	resp := ts.api.Post("/api/v1/admin/backups", adminAuth, map[string]any{"notes": "before upgrade"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[BackupResponse](t, resp.Body.Bytes()).Data
	assert.NotEmpty(t, created.ID)
	assert.Len(t, created.Checksum, 64)
	require.NotNil(t, created.Counts)
	assert.Equal(t, 1, created.Counts.Books)
	require.NotNil(t, created.Manifest)
	assert.Equal(t, "before upgrade", created.Manifest.Notes)

	resp = ts.api.Get("/api/v1/admin/backups", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[ListBackupsResponse](t, resp.Body.Bytes()).Data
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Backups[0].ID)

	resp = ts.api.Get("/api/v1/admin/backups/"+created.ID, adminAuth)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/admin/backups/"+created.ID+"/download", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, zipEntries(t, resp.Body.Bytes()), backup.BooksEntry)

	resp = ts.api.Post("/api/v1/admin/backups/"+created.ID+"/validate", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[ValidationResponse](t, resp.Body.Bytes()).Data.Valid)

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.ID, adminAuth)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/admin/backups/"+created.ID, adminAuth)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBackups_RemoteDisabled(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)

	resp := ts.api.Get("/api/v1/admin/backups/remote", adminAuth)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/admin/backups", adminAuth, map[string]any{"upload": true})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRestoreUpload_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ctx := context.Background()

	book := ts.addBook(t, nil, "Dune")
	_, err := ts.services.Catalog.AddComment(ctx, book.ID, "", "classic")
	require.NoError(t, err)

	archive, err := ts.services.Archive.MakeBackup(ctx, "")
	require.NoError(t, err)

	// Wipe, then restore in replace mode.
	require.NoError(t, ts.store.Books.Save(ctx, nil))
	require.NoError(t, ts.store.Comments.Save(ctx, nil))

	req := multipartRequest(t, "/api/v1/admin/restore?mode=replace", nil,
		&filePart{field: "file", name: "backup.zip", data: archive})
	rec := ts.do(t, req, adminAuth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode[RestoreResponse](t, rec.Body.Bytes())
	assert.Equal(t, "replace", env.Data.Mode)
	require.NotNil(t, env.Data.Books)
	assert.Equal(t, 1, env.Data.Books.Total)
	require.NotNil(t, env.Data.Comments)
	assert.Equal(t, 1, env.Data.Comments.Total)

	assert.Len(t, ts.store.Books.Load(ctx), 1)
	assert.Len(t, ts.store.Comments.Load(ctx), 1)
}

func TestRestoreUpload_NotAZip(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ts.addBook(t, nil, "Dune")

	req := multipartRequest(t, "/api/v1/admin/restore", nil,
		&filePart{field: "file", name: "backup.zip", data: []byte("garbage")})
	rec := ts.do(t, req, adminAuth)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, ts.store.Books.Load(context.Background()), 1)
}

func TestValidateUpload(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)

	archive, err := ts.services.Archive.MakeBackup(context.Background(), "")
	require.NoError(t, err)

	req := multipartRequest(t, "/api/v1/admin/backups/validate", nil,
		&filePart{field: "file", name: "backup.zip", data: archive})
	rec := ts.do(t, req, adminAuth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode[ValidationResponse](t, rec.Body.Bytes())
	assert.True(t, env.Data.Valid)
	require.NotNil(t, env.Data.Manifest)
	assert.Equal(t, backup.FormatVersion, env.Data.Manifest.Version)
}

func TestPruneComments(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ctx := context.Background()

	book := ts.addBook(t, nil, "Dune")
	_, err := ts.services.Catalog.AddComment(ctx, book.ID, "", "kept")
	require.NoError(t, err)
	require.NoError(t, ts.store.Comments.Update(ctx, func(c []domain.Comment) ([]domain.Comment, error) {
		return append(c, domain.Comment{Record: domain.Record{ID: "comment-orphan"}, BookID: "book-gone", User: "x", Text: "y"}), nil
	}))

	resp := ts.api.Post("/api/v1/admin/maintenance/prune-comments", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decode[MaintenanceResponse](t, resp.Body.Bytes()).Data.Affected)
	assert.Len(t, ts.store.Comments.Load(ctx), 1)
}

func TestRepairCoverPaths(t *testing.T) {
	ts := setupTestServer(t)
	adminAuth := ts.login(t, "root", domain.RoleAdmin)
	ctx := context.Background()

	require.NoError(t, ts.covers.Save("bare.jpg", pngBytes(t, 4, 4)))
	_, err := ts.services.Catalog.AddBook(ctx, nil, domain.BookInput{Title: "Legacy", CoverPath: "bare.jpg"})
	require.NoError(t, err)

	resp := ts.api.Post("/api/v1/admin/maintenance/repair-covers", adminAuth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decode[MaintenanceResponse](t, resp.Body.Bytes()).Data.Affected)
	assert.Equal(t, "covers/bare.jpg", ts.store.Books.Load(ctx)[0].CoverPath)
}
