package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagarc03/contentd"
	"github.com/sagarc03/contentd/filesystem"
	contentdhttp "github.com/sagarc03/contentd/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Download(ctx context.Context, q url.Values) (contentd.Content, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(contentd.Content), args.Error(1)
}

func (m *MockService) Attachment(ctx context.Context) (contentd.Content, error) {
	args := m.Called(ctx)
	return args.Get(0).(contentd.Content), args.Error(1)
}

func (m *MockService) Upload(ctx context.Context, body io.Reader) (contentd.Content, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(contentd.Content), args.Error(1)
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Root(t *testing.T) {
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, new(MockService))

	rec := serve(handler.Router(), "GET", "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentd.ContentTypeText, rec.Header().Get("Content-Type"))
	assert.Equal(t, "default endpoint", rec.Body.String())
}

func TestHandler_NewEndpoint(t *testing.T) {
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, new(MockService))

	rec := serve(handler.Router(), "GET", "/newEndpoint", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "different endpoint", rec.Body.String())
}

func TestHandler_Download_Success(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	service.On("Download", mock.Anything, mock.MatchedBy(func(q url.Values) bool {
		return q.Get("param") == "notes"
	})).Return(contentd.TextContent("Hello, World!"), nil)

	rec := serve(handler.Router(), "GET", "/download?param=notes", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentd.ContentTypeText, rec.Header().Get("Content-Type"))
	assert.Equal(t, "13", rec.Header().Get("Content-Length"))
	assert.Equal(t, "Hello, World!", rec.Body.String())

	service.AssertExpectations(t)
}

func TestHandler_Download_PassesDuplicateParams(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	service.On("Download", mock.Anything, mock.MatchedBy(func(q url.Values) bool {
		return len(q["param"]) == 2 && q["param"][1] == "b"
	})).Return(contentd.TextContent("b"), nil)

	rec := serve(handler.Router(), "GET", "/download?param=a&param=b", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestHandler_Download_FailuresAreEmpty404(t *testing.T) {
	for _, err := range []error{
		contentd.ErrNotFound,
		contentd.ErrPermission,
		contentd.ErrRead,
		contentd.ErrDecode,
		contentd.ErrOutsideRoot,
		errors.New("unexpected"),
	} {
		service := new(MockService)
		handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)
		service.On("Download", mock.Anything, mock.Anything).Return(contentd.Content{}, err)

		rec := serve(handler.Router(), "GET", "/download?param=x", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code, err.Error())
		assert.Empty(t, rec.Body.String(), err.Error())
	}
}

func TestHandler_Upload(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	service.On("Upload", mock.Anything, mock.Anything).Return(contentd.TextContent("Received body: hello"), nil)

	rec := serve(handler.Router(), "POST", "/upload_creds", strings.NewReader("hello"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Received body: hello", rec.Body.String())
	service.AssertExpectations(t)
}

func TestHandler_Upload_InvalidInput(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	service.On("Upload", mock.Anything, mock.Anything).Return(contentd.Content{}, contentd.ErrInvalidInput)

	rec := serve(handler.Router(), "POST", "/upload_creds", bytes.NewReader([]byte{0xff}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_body")
}

func TestHandler_Attachment_NotRegisteredByDefault(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	rec := serve(handler.Router(), "GET", "/attachment", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	service.AssertNotCalled(t, "Attachment", mock.Anything)
}

func TestHandler_Attachment(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{AttachmentRoute: contentdhttp.AttachmentPath}, service)

	service.On("Attachment", mock.Anything).Return(contentd.AttachmentContent([]byte{0x01, 0x02}, "blob.bin"), nil)

	rec := serve(handler.Router(), "GET", "/attachment", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=blob.bin", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{0x01, 0x02}, rec.Body.Bytes())
	service.AssertExpectations(t)
}

func TestHandler_Unmatched(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)
	router := handler.Router()

	tt := []struct {
		Method string
		Target string
		Body   io.Reader
	}{
		{Method: "DELETE", Target: "/download?param=x"},
		{Method: "POST", Target: "/download", Body: strings.NewReader("x")},
		{Method: "PUT", Target: "/upload_creds", Body: strings.NewReader("x")},
		{Method: "GET", Target: "/upload_creds"},
		{Method: "GET", Target: "/unknown"},
		{Method: "GET", Target: "/unknown?param=x"},
		{Method: "POST", Target: "/"},
		{Method: "GET", Target: "/download/extra"},
	}

	for _, tc := range tt {
		rec := serve(router, tc.Method, tc.Target, tc.Body)

		assert.Equal(t, http.StatusNotFound, rec.Code, tc.Method+" "+tc.Target)
		assert.Empty(t, rec.Body.String(), tc.Method+" "+tc.Target)
	}

	service.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
	service.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestHandler_VerifierGuardsDownload(t *testing.T) {
	service := new(MockService)
	verifier := contentdhttp.RequestVerifierFunc(func(r *http.Request) error {
		if r.Header.Get("Authorization") != "Bearer ok" {
			return contentd.ErrUnauthorized
		}
		return nil
	})
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{Verifier: verifier}, service)
	router := handler.Router()

	rec := serve(router, "GET", "/download?param=x", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	service.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)

	service.On("Download", mock.Anything, mock.Anything).Return(contentd.TextContent("ok"), nil)
	req := httptest.NewRequest("GET", "/download?param=x", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Static routes stay public.
	rec = serve(router, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CORS(t *testing.T) {
	config := &contentdhttp.HandlerConfig{
		CORS: contentdhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET"},
		},
	}
	handler := contentdhttp.NewHandler(config, new(MockService))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

// Tests below run the router against a real os.Root backed store.

func newRealRouter(t *testing.T, cfg contentd.ServiceConfig, handlerCfg contentdhttp.HandlerConfig) (http.Handler, string) {
	t.Helper()

	tempDir := t.TempDir()
	root, err := os.OpenRoot(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	if cfg.Resolver.Default == "" {
		cfg.Resolver.Default = contentd.DefaultValue
	}
	service, err := contentd.NewService(cfg, filesystem.NewStore(root), nil)
	require.NoError(t, err)

	return contentdhttp.NewHandler(&handlerCfg, service).Router(), tempDir
}

func TestRouter_Download_File(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes"), []byte("line one\nline two"), 0o644))

	rec := serve(router, "GET", "/download?param=notes", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "line one\nline two", rec.Body.String())
}

func TestRouter_Download_DefaultParam(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default"), []byte("fallback"), 0o644))

	rec := serve(router, "GET", "/download", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Body.String())
}

func TestRouter_Download_DirectorySkipsInvalid(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "f1"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "f2"), []byte{0xff, 0xfe}, 0o644))

	rec := serve(router, "GET", "/download?param=docs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a\n", rec.Body.String())
}

func TestRouter_Download_EmptyDirectory(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0o755))

	rec := serve(router, "GET", "/download?param=empty", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_Download_Missing(t *testing.T) {
	router, _ := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})

	rec := serve(router, "GET", "/download?param=nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_Download_InvalidUTF8File(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bin"), []byte{0xc3, 0x28}, 0o644))

	rec := serve(router, "GET", "/download?param=bin", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_Download_MalformedQuery(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default"), []byte("fallback"), 0o644))

	for _, target := range []string{"/download?param=%zz", "/download?param=50%", "/download?param=a;b"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(router, "GET", target, nil)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestHandler_Download_MalformedQuerySkipsService(t *testing.T) {
	service := new(MockService)
	handler := contentdhttp.NewHandler(&contentdhttp.HandlerConfig{}, service)

	rec := serve(handler.Router(), "GET", "/download?param=%zz", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
	service.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestRouter_Download_Traversal(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})

	// A sibling of the root that a naive join would reach.
	sibling := filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"-secret")
	require.NoError(t, os.WriteFile(sibling, []byte("secret"), 0o644))
	t.Cleanup(func() { _ = os.Remove(sibling) })

	target := "/download?param=" + url.QueryEscape("../"+filepath.Base(sibling))
	rec := serve(router, "GET", target, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRouter_Download_Extension(t *testing.T) {
	router, dir := newRealRouter(t,
		contentd.ServiceConfig{Resolver: contentd.ResolverConfig{Extension: ".txt"}},
		contentdhttp.HandlerConfig{},
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("with extension"), 0o644))

	rec := serve(router, "GET", "/download?param=notes", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "with extension", rec.Body.String())
}

func TestRouter_Download_Idempotent(t *testing.T) {
	router, dir := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("beta"), 0o644))

	first := serve(router, "GET", "/download?param=", nil)
	second := serve(router, "GET", "/download?param=", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, "alpha\nbeta\n", first.Body.String())
}

func TestRouter_Upload(t *testing.T) {
	router, _ := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})

	rec := serve(router, "POST", "/upload_creds", strings.NewReader("hello"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Received body: hello", rec.Body.String())
}

func TestRouter_Upload_InvalidUTF8(t *testing.T) {
	router, _ := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{})

	rec := serve(router, "POST", "/upload_creds", bytes.NewReader([]byte{0xff, 0xfe}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp contentdhttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "invalid_body", resp.Error)
}

func TestRouter_Upload_TooLarge(t *testing.T) {
	router, _ := newRealRouter(t, contentd.ServiceConfig{}, contentdhttp.HandlerConfig{MaxUploadSize: 4})

	rec := serve(router, "POST", "/upload_creds", strings.NewReader("hello world"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "body_too_large")
}

func TestRouter_Attachment(t *testing.T) {
	router, dir := newRealRouter(t,
		contentd.ServiceConfig{AttachmentPath: "files/blob.bin", AttachmentFilename: "download.bin"},
		contentdhttp.HandlerConfig{AttachmentRoute: contentdhttp.AttachmentPath},
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "files"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files", "blob.bin"), []byte{0x00, 0xff}, 0o644))

	rec := serve(router, "GET", "/attachment", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=download.bin", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{0x00, 0xff}, rec.Body.Bytes())
}
