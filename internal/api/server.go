package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/taskhub-core/internal/auth"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/config"
	"github.com/nerrad567/taskhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/taskhub-core/internal/resolver"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is a component whose health is reported by GET /health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	RateLimit config.RateLimitConfig
	Logger    *logging.Logger
	Tokens    *auth.TokenService
	Resolver  *resolver.Resolver
	// Health maps component names to checkers. Optional.
	Health  map[string]HealthChecker
	Version string
}

// Server is the HTTP API server for TaskHub Core.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	tokens   *auth.TokenService
	resolver *resolver.Resolver
	health   map[string]HealthChecker
	limiter  *rateLimiter
	version  string
	server   *http.Server
	cancel   context.CancelFunc // stops background goroutines on Close()
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger.With("component", "api"),
		tokens:   deps.Tokens,
		resolver: deps.Resolver,
		health:   deps.Health,
		version:  deps.Version,
	}
	if deps.RateLimit.Enabled {
		s.limiter = newRateLimiter(deps.RateLimit.Requests, deps.RateLimit.GetWindow())
	}
	return s, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The rate limiter's cleanup loop runs until Close or until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.limiter != nil {
		go s.limiter.cleanupLoop(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server, waiting up to
// gracefulShutdownTimeout for in-flight requests.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
