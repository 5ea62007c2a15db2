package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/armmbed/mbedtargets"
)

// shutdownTimeout bounds the graceful shutdown of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Lookup is the part of [mbedtargets.Targets] the server queries.
type Lookup interface {
	List(ctx context.Context) ([]mbedtargets.Target, error)
	ByProductCode(ctx context.Context, code string) (mbedtargets.Target, error)
	ByBoardType(ctx context.Context, boardType string) (mbedtargets.Target, error)
}

// TargetView is the JSON representation of a target.
type TargetView struct {
	ProductCode   string   `json:"product_code"`
	BoardType     string   `json:"board_type"`
	PlatformName  string   `json:"platform_name"`
	MbedOSSupport []string `json:"mbed_os_support"`
	MbedEnabled   []string `json:"mbed_enabled"`
}

// NewTargetView converts a target into its JSON representation.
func NewTargetView(t mbedtargets.Target) TargetView {
	return TargetView{
		ProductCode:   t.ProductCode(),
		BoardType:     t.BoardType(),
		PlatformName:  t.PlatformName(),
		MbedOSSupport: t.MbedOSSupport(),
		MbedEnabled:   t.MbedEnabled(),
	}
}

// errorResponse is the body of every non-200 API response.
type errorResponse struct {
	Error string `json:"error"`
}

// Server answers board lookups over HTTP.
//
// Server provides three endpoints:
//   - GET /api/targets: All targets in database order
//   - GET /api/targets/{product_code}: The target with that product code
//   - GET /api/boards/{board_type}: The first target of that board type
//
// Every request performs a fresh lookup; the server keeps no copy of the
// database. The server is designed for graceful shutdown via context
// cancellation.
type Server struct {
	targets    Lookup
	port       int
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// The server is not started until [Server.Start] is called.
func NewServer(targets Lookup, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		targets: targets,
		port:    port,
		logger:  logger,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/targets", s.handleList)
	mux.HandleFunc("GET /api/targets/{code}", s.handleProductCode)
	mux.HandleFunc("GET /api/boards/{type}", s.handleBoardType)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout. The returned channel is closed once shutdown completes.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) (<-chan struct{}, error) {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so lookups stop on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return done, nil
}

// Addr returns the address the server listens on, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	targets, err := s.targets.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]TargetView, len(targets))
	for i, t := range targets {
		views[i] = NewTargetView(t)
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleProductCode(w http.ResponseWriter, r *http.Request) {
	target, err := s.targets.ByProductCode(r.Context(), r.PathValue("code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewTargetView(target))
}

func (s *Server) handleBoardType(w http.ResponseWriter, r *http.Request) {
	target, err := s.targets.ByBoardType(r.Context(), r.PathValue("type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NewTargetView(target))
}

// writeError maps lookup failures to 404 and database failures to 502.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, mbedtargets.ErrTargetNotFound) {
		status = http.StatusNotFound
	} else {
		s.logger.Warn("lookup failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
