package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sheetsync/backend/internal/config"
	adminusecase "sheetsync/backend/internal/usecase/admin"
	catalogusecase "sheetsync/backend/internal/usecase/catalog"

	"github.com/rs/zerolog"
)

// sheetGate carries the configuration the token gate checks against. It is
// threaded in explicitly; the gate never reads ambient state.
type sheetGate struct {
	SheetID string
	Secret  string
	Expiry  time.Duration
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         *http.ServeMux
	catalogService *catalogusecase.Service
	adminService   *adminusecase.Service
	gate           sheetGate
	log            zerolog.Logger
	allowedOrigins []string
	addr           string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, log zerolog.Logger, catalogService *catalogusecase.Service, adminService *adminusecase.Service) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := withLogging(log, withCORS(mux, cfg.AllowedOrigins))

	srv := &Server{
		httpServer: &http.Server{
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
		},
		router:         mux,
		catalogService: catalogService,
		adminService:   adminService,
		gate: sheetGate{
			SheetID: cfg.SheetID,
			Secret:  cfg.SheetSecret,
			Expiry:  cfg.TokenExpiry,
		},
		log:            log,
		allowedOrigins: cfg.AllowedOrigins,
		addr:           addr,
	}
	srv.httpServer.Addr = addr
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the provided address.
func (s *Server) Start() error {
	s.httpServer.Addr = s.addr
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying ServeMux so routes can be registered.
func (s *Server) Router() *http.ServeMux {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
