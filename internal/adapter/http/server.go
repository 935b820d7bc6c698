package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/state"
)

// Catalog is the application layer the API is served from.
type Catalog interface {
	Signup(ctx context.Context, user domain.User) error
	Login(ctx context.Context, email, password string) (domain.LoginResult, error)
	CompleteTwoFactor(ctx context.Context, tempToken, code string, recovery bool) (domain.Session, error)
	Restore(ctx context.Context, session domain.Session) (state.SessionState, error)
	Logout(token string)
	SetupTwoFactor(ctx context.Context, token string) (domain.TwoFactorSetup, error)
	VerifyTwoFactorSetup(ctx context.Context, token, code string) (domain.TwoFactorActivation, error)

	State(token string) (state.SessionState, error)
	Refresh(ctx context.Context, token string) (state.SessionState, error)
	GetPeak(ctx context.Context, token, id string) (domain.Peak, error)
	CreatePeak(ctx context.Context, token string, p domain.Peak) (domain.Peak, error)
	UpdatePeak(ctx context.Context, token, id string, p domain.Peak) (domain.Peak, error)
	DeletePeak(ctx context.Context, token, id string) error
	UploadImages(ctx context.Context, token string, files []domain.ImageFile) ([]domain.StoredImage, error)
}

// Server exposes the catalog API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	catalog    Catalog
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes and the operational
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, catalog Catalog, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      requestID(logger, mux),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/login/2fa", s.handleLoginTwoFactor)
	mux.HandleFunc("POST /api/session", s.handleRestore)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/account/2fa/setup", s.handleTwoFactorSetup)
	mux.HandleFunc("POST /api/account/2fa/verify", s.handleTwoFactorVerify)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/peaks", s.handleListPeaks)
	mux.HandleFunc("POST /api/peaks", s.handleCreatePeak)
	mux.HandleFunc("GET /api/peaks/{id}", s.handleGetPeak)
	mux.HandleFunc("PUT /api/peaks/{id}", s.handleUpdatePeak)
	mux.HandleFunc("DELETE /api/peaks/{id}", s.handleDeletePeak)
	mux.HandleFunc("GET /api/peaks/{id}/nearby", s.handleNearby)

	mux.HandleFunc("GET /api/charts/categories", s.handleCategoryChart)
	mux.HandleFunc("GET /api/charts/categories/{index}", s.handleCategoryAtIndex)
	mux.HandleFunc("GET /api/charts/elevation-bands", s.handleElevationBands)
	mux.HandleFunc("GET /api/charts/elevation-series", s.handleElevationSeries)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("POST /api/images", s.handleUploadImages)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
