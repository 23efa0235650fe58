package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"memorial/internal/config"
	"memorial/internal/middleware"
	"memorial/internal/session"
	"memorial/internal/submissions"
	"memorial/pkg/cache"
	"memorial/pkg/utils"
)

type Options struct {
	Config      *config.Config
	Submissions *submissions.Service
	Sessions    *session.Manager

	// Pages caches rendered listing pages. nil disables caching.
	Pages *cache.MemoryCache

	// Assets holds web/templates and web/static.
	Assets fs.FS

	// Media serves stored uploads under /media/. nil when the backend
	// serves them itself (GCS).
	Media http.Handler

	// RequireApproval reports the live moderation mode. Defaults to
	// config.RequireApproval.
	RequireApproval func() bool
}

// Server holds everything the HTTP handlers need.
type Server struct {
	conf            *config.Config
	subs            *submissions.Service
	sessions        *session.Manager
	pages           *cache.MemoryCache
	media           http.Handler
	static          http.Handler
	requireApproval func() bool
	maxUpload       int64

	tmpl *renderer

	// gate throttles password attempts per IP.
	gate    *middleware.RateLimiter
	proxies utils.ProxyList

	// SingleFlight group to prevent cache stampedes on the listing
	requestGroup singleflight.Group
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Submissions == nil || opts.Sessions == nil || opts.Assets == nil {
		return nil, errors.New("handlers: config, submissions, sessions and assets are required")
	}

	tmpl, err := newRenderer(opts.Assets, opts.Config, opts.Submissions.Storage().URL)
	if err != nil {
		return nil, err
	}

	static, err := fs.Sub(opts.Assets, "web/static")
	if err != nil {
		return nil, err
	}

	requireApproval := opts.RequireApproval
	if requireApproval == nil {
		requireApproval = config.RequireApproval
	}

	proxies, err := utils.ParseProxies(opts.Config.Security.TrustedProxies)
	if err != nil {
		return nil, err
	}

	gate := middleware.NewRateLimiter(1, time.Second, 10)
	gate.Proxies = proxies
	gate.Code = utils.ErrAuthRateLimitExceed
	gate.Message = "Too many password attempts. Please wait."

	return &Server{
		conf:            opts.Config,
		subs:            opts.Submissions,
		sessions:        opts.Sessions,
		pages:           opts.Pages,
		media:           opts.Media,
		static:          http.StripPrefix("/static/", http.FileServerFS(static)),
		requireApproval: requireApproval,
		maxUpload:       utils.SizeToBytes(opts.Config.Media.MaxUploadSize, DefaultMaxUploadSize),
		tmpl:            tmpl,
		gate:            gate,
		proxies:         proxies,
	}, nil
}

// GateLimiter exposes the password limiter so serve can run its cleanup.
func (s *Server) GateLimiter() *middleware.RateLimiter {
	return s.gate
}

// Proxies returns the parsed security.trusted_proxies list.
func (s *Server) Proxies() utils.ProxyList {
	return s.proxies
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.ListHandler)
	mux.HandleFunc("GET /healthz", HealthHandler)
	mux.Handle("GET /static/", s.static)
	if s.media != nil {
		mux.Handle("GET /media/", s.media)
	}

	mux.HandleFunc("GET /submit/password/{$}", s.PasswordHandler)
	mux.Handle("POST /submit/password/{$}", s.gate.Middleware(http.HandlerFunc(s.PasswordHandler)))

	mux.HandleFunc("GET /submit/{$}", s.RequireUnlocked(s.SubmitHandler))
	mux.HandleFunc("GET /edit/{id}/{$}", s.RequireUnlocked(s.EditorHandler))
	mux.HandleFunc("POST /edit/{id}/{$}", s.RequireUnlocked(s.EditorHandler))
	mux.HandleFunc("POST /edit/{id}/delete/{$}", s.RequireUnlocked(s.DeleteSubmissionHandler))

	mux.HandleFunc("POST /edit/{id}/upload_image/{$}", s.RequireUnlocked(s.UploadHandler))
	mux.HandleFunc("POST /edit/{id}/delete_image/{$}", s.RequireUnlocked(s.DeleteImageHandler))
	mux.HandleFunc("DELETE /edit/{id}/delete_image/{$}", s.RequireUnlocked(s.DeleteImageHandler))
	mux.HandleFunc("POST /edit/{id}/reorder_images/{$}", s.RequireUnlocked(s.ReorderImagesHandler))
	mux.HandleFunc("POST /edit/{id}/reorder_links/{$}", s.RequireUnlocked(s.ReorderLinksHandler))

	return mux
}

// HealthHandler answers liveness probes.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
