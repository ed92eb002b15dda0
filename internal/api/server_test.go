package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookblog/bookblog-server/internal/auth"
	"github.com/bookblog/bookblog-server/internal/backup"
	"github.com/bookblog/bookblog-server/internal/domain"
	"github.com/bookblog/bookblog-server/internal/media/images"
	"github.com/bookblog/bookblog-server/internal/service"
	"github.com/bookblog/bookblog-server/internal/store"
)

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

type testServer struct {
	server   *Server
	api      humatest.TestAPI
	store    *store.Store
	services *Services
	covers   *images.Storage
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	dataDir := t.TempDir()
	st := store.New(dataDir, nil)
	require.NoError(t, st.Init(ctx))

	covers, err := images.NewStorage(st.CoversDir())
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(dataDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute)
	require.NoError(t, err)

	archiver := backup.NewArchiver(st, covers, nil)
	services := &Services{
		Auth:    service.NewAuthService(st, tokens, nil, nil),
		Catalog: service.NewCatalogService(st, images.NewCoverProcessor(covers, nil), nil),
		Archive: archiver,
		Backups: backup.NewBackupService(archiver, filepath.Join(dataDir, "backups"), nil, nil),
	}

	s := NewServer(services, covers, Options{DataDir: dataDir, AuthRequestsPerMinute: 1000}, nil)
	t.Cleanup(s.Close)

	return &testServer{
		server:   s,
		api:      humatest.Wrap(t, s.API()),
		store:    st,
		services: services,
		covers:   covers,
	}
}

// createUser registers an account directly through the service.
func (ts *testServer) createUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u, err := ts.services.Auth.CreateUser(context.Background(), username, username+"-password", role)
	require.NoError(t, err)
	return u
}

// login creates an account and returns an Authorization header for it.
func (ts *testServer) login(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	ts.createUser(t, username, role)

	result, err := ts.services.Auth.Login(context.Background(), username, username+"-password")
	require.NoError(t, err)
	return "Authorization: Bearer " + result.AccessToken
}

func (ts *testServer) addBook(t *testing.T, owner *domain.Identity, title string) *domain.Book {
	t.Helper()
	b, err := ts.services.Catalog.AddBook(context.Background(), owner, domain.BookInput{Title: title})
	require.NoError(t, err)
	return b
}

// do sends a raw request through the router, used for multipart endpoints.
func (ts *testServer) do(t *testing.T, req *http.Request, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	if authHeader != "" {
		_, value, _ := strings.Cut(authHeader, ": ")
		req.Header.Set("Authorization", value)
	}
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 40, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func httptestRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
