package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/filedrop"
)

type Service interface {
	Upload(ctx context.Context, requested string, content io.Reader) (filedrop.UploadResult, error)
	Download(ctx context.Context, storageName string) (filedrop.Object, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// PublicHost is the host[:port] embedded in returned URLs.
	PublicHost    string
	MaxBodyBytes  int64
	AllowUpload   bool
	AllowDownload bool
	CORS          CORSConfig
}

// UploadResponse is the JSON reply to uploads that ask for application/json.
type UploadResponse struct {
	filedrop.UploadResult
	URL string `json:"url"`
}

// Handler provides HTTP handlers for upload and download.
type Handler struct {
	config  HandlerConfig
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
// A nil logger discards output.
func NewHandler(config *HandlerConfig, service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		config:  *config,
		service: service,
		logger:  logger,
	}
}

// Router returns an http.Handler serving:
//
//	PUT /{name}      upload
//	GET /get/{name}  download
//	GET /            usage hint
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

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

	r.Get("/", h.handleUsage)
	r.Get("/get/{name}", h.handleDownload)
	r.With(BodyLimitMiddleware(h.config.MaxBodyBytes)).Put("/{name}", h.handleUpload)

	return r
}

func (h *Handler) handleUsage(w http.ResponseWriter, _ *http.Request) {
	h.logger.Info("got request at root, replying with help")
	WriteText(w, http.StatusBadRequest, UsageHint(h.config.PublicHost))
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.config.AllowUpload {
		WriteText(w, http.StatusForbidden, msgUploadsProhibited)
		return
	}

	name, ok := nameParam(r)
	if !ok {
		h.logger.Warn("rejected upload name", "name", chi.URLParam(r, "name"))
		WriteText(w, http.StatusBadRequest, msgInvalidName)
		return
	}

	h.logger.Info("handling upload request", "name", name)

	result, err := h.service.Upload(r.Context(), name, r.Body)
	if err != nil {
		h.handleUploadError(w, name, err)
		return
	}

	if wantsJSON(r) {
		resp := UploadResponse{UploadResult: result}
		if h.config.AllowDownload {
			resp.URL = DownloadURL(h.config.PublicHost, result.StorageName)
		}
		if err := WriteJSON(w, http.StatusCreated, resp); err != nil {
			h.logger.Error("failed to encode upload response", "err", err)
		}
		return
	}

	if !h.config.AllowDownload {
		WriteText(w, http.StatusCreated, result.StorageName+"\n")
		return
	}

	WriteText(w, http.StatusCreated, Banner(h.config.PublicHost, result.StorageName))
}

func (h *Handler) handleUploadError(w http.ResponseWriter, name string, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.logger.Warn("upload exceeds size limit", "name", name, "limit", maxBytesErr.Limit)
		WriteText(w, http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.Is(err, filedrop.ErrInvalidName):
		h.logger.Warn("rejected upload name", "name", name)
		WriteText(w, http.StatusBadRequest, msgInvalidName)
	default:
		h.logger.Error("failed to upload file", "name", name, "err", err)
		WriteText(w, http.StatusInternalServerError, msgUploadFailed)
	}
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, ok := nameParam(r)
	if !ok {
		h.logger.Warn("unknown file requested", "name", chi.URLParam(r, "name"))
		WriteText(w, http.StatusNotFound, msgNotFound)
		return
	}

	h.logger.Info("handling download request", "name", name)

	// Disabled downloads look exactly like a missing file.
	if !h.config.AllowDownload {
		h.logger.Warn("download refused, downloads disabled", "name", name)
		WriteText(w, http.StatusNotFound, msgNotFound)
		return
	}

	obj, err := h.service.Download(r.Context(), name)
	if err != nil {
		h.logger.Warn("unknown file requested", "name", name, "err", err)
		WriteText(w, http.StatusNotFound, msgNotFound)
		return
	}
	defer func() { _ = obj.Close() }()

	h.logger.Info("sending file", "name", name, "bytes", obj.Size)

	// Stored bytes are never rendered on this origin.
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Content); err != nil {
		h.logger.Warn("download interrupted", "name", name, "err", err)
	}
}

// nameParam returns the unescaped {name} route parameter. chi matches on the
// raw path when the request carries escaped characters, in which case the
// parameter is still escaped.
func nameParam(r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, name != ""
	}

	unescaped, err := url.PathUnescape(name)
	if err != nil || unescaped == "" {
		return "", false
	}
	return unescaped, true
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
