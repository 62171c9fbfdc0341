package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/contentd"
)

// Fixed bodies of the two static routes.
const (
	RootText      = "default endpoint"
	SecondaryText = "different endpoint"
)

// Route paths.
const (
	RootPath       = "/"
	SecondaryPath  = "/newEndpoint"
	DownloadPath   = "/download"
	UploadPath     = "/upload_creds"
	AttachmentPath = "/attachment"
)

type Service interface {
	Download(ctx context.Context, q url.Values) (contentd.Content, error)
	Attachment(ctx context.Context) (contentd.Content, error)
	Upload(ctx context.Context, body io.Reader) (contentd.Content, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	// Verifier guards the download and attachment routes. Nil means public.
	Verifier RequestVerifier
	// AttachmentRoute registers GET <route> for Service.Attachment. Empty
	// leaves the route unregistered.
	AttachmentRoute string
	// MaxUploadSize caps upload bodies in bytes. Zero means no limit.
	MaxUploadSize int64
	CORS          CORSConfig
}

// Handler provides the HTTP routes for content resolution.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with the fixed route table. Any request
// that matches no route, including a known path with the wrong method,
// receives an empty 404.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleNotFound)

	r.Get(RootPath, h.handleRoot)
	r.Get(SecondaryPath, h.handleSecondary)
	r.Post(UploadPath, h.handleUpload)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.Verifier))
		r.Get(DownloadPath, h.handleDownload)
		if h.config.AttachmentRoute != "" {
			r.Get(h.config.AttachmentRoute, h.handleAttachment)
		}
	})

	return r
}

func (h *Handler) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteNotFound(w)
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusOK, RootText)
}

func (h *Handler) handleSecondary(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusOK, SecondaryText)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	q, err := contentd.ParseQuery(r.URL.RawQuery)
	if err != nil {
		slog.InfoContext(r.Context(), "request failed",
			"op", contentd.OpDownload,
			"request_id", contentd.RequestIDFromContext(r.Context()),
			"reason", contentd.Reason(err),
			"err", err,
		)
		HandleError(w, err)
		return
	}

	content, err := h.service.Download(r.Context(), q)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteContent(w, content)
}

func (h *Handler) handleAttachment(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Attachment(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteContent(w, content)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if h.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	content, err := h.service.Upload(r.Context(), body)
	if err != nil {
		HandleUploadError(w, err)
		return
	}

	WriteContent(w, content)
}
