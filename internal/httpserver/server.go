package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/blackmichael/bulletin/internal/blobstore"
	"github.com/blackmichael/bulletin/internal/config"
	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/i18n"
	"github.com/blackmichael/bulletin/internal/render"
)

const (
	// maxRequestBytes caps a whole submission: the image limit plus room for
	// the body field and multipart framing.
	maxRequestBytes = 2 * domain.MaxImageBytes

	// multipartMemory is how much of a multipart form is held in memory
	// before file parts spill to temporary files.
	multipartMemory = 1 << 20

	imageCacheControl = "public, max-age=31536000, immutable"
)

// ImageSource opens committed image blobs for serving.
type ImageSource interface {
	Open(ctx context.Context, name string) (*os.File, os.FileInfo, error)
}

// Server is the HTTP server for the board page, its form endpoint and the
// image blobs.
type Server struct {
	cfg        *config.Config
	board      *domain.BoardService
	images     ImageSource
	localizer  *i18n.Localizer
	logger     *slog.Logger
	handler    http.Handler
	httpServer *http.Server
}

// NewServer creates a new HTTP server over the given board service.
func NewServer(cfg *config.Config, board *domain.BoardService, images ImageSource, localizer *i18n.Localizer, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		board:     board,
		images:    images,
		localizer: localizer,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("GET "+render.ImagePathPrefix+"{name}", s.handleImage)
	mux.HandleFunc("GET "+render.ScriptPath, s.handleScript)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.middleware(mux)
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP requests. It blocks until the server is
// shut down or an error occurs.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr, "hostname", s.cfg.Hostname)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := s.board.ListPosts(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", "request_id", RequestID(ctx), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page, err := render.RenderPage(ctx, render.PageData{
		Copy:      s.localizer.Resolve(r.Header.Get("Accept-Language")),
		ErrorCode: r.URL.Query().Get("err"),
		Posts:     posts,
	})
	if err != nil {
		s.logger.Error("failed to render page", "request_id", RequestID(ctx), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Add("Vary", "Accept-Language")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		code := domain.CodeBody
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			code = domain.CodeSize
		}
		s.logger.Info("submission rejected", "request_id", RequestID(ctx), "code", code, "error", err)
		s.redirectError(w, r, code)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	upload, closeUpload, err := formUpload(r)
	if err != nil {
		s.logger.Error("failed to open upload", "request_id", RequestID(ctx), "error", err)
		s.redirectError(w, r, domain.CodeInternal)
		return
	}
	defer closeUpload()

	post, err := s.board.Submit(ctx, r.FormValue("body"), upload)
	if err != nil {
		code := domain.ErrorCode(err)
		if code == domain.CodeInternal {
			s.logger.Error("failed to store post", "request_id", RequestID(ctx), "error", err)
		} else {
			s.logger.Info("submission rejected", "request_id", RequestID(ctx), "code", code, "error", err)
		}
		s.redirectError(w, r, code)
		return
	}

	s.logger.Info("post created", "request_id", RequestID(ctx), "post_id", post.ID, "has_image", post.HasImage())
	http.Redirect(w, r, "/", http.StatusFound)
}

// formUpload returns the image part of a parsed form, or nil when the image
// field was left empty. The returned close function is always non-nil.
func formUpload(r *http.Request) (*domain.Upload, func(), error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &domain.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ClaimedType: header.Header.Get("Content-Type"),
		Content:     file,
	}, func() { file.Close() }, nil
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/?err="+url.QueryEscape(code), http.StatusFound)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f, info, err := s.images.Open(r.Context(), name)
	if errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, blobstore.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("failed to open image", "request_id", RequestID(r.Context()), "name", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Cache-Control", imageCacheControl)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	http.ServeFileFS(w, r, render.StaticFS, "static/board.js")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
