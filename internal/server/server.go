// =============================================================================
// Disperse Validator - HTTP Server
// =============================================================================
//
// JSON API for front ends that validate recipient lists as the user types:
//
//   GET  /api/status     service status and version
//   POST /api/validate   {"text": "..."}                    -> validation result
//   POST /api/resolve    {"text": "...", "policy": "..."}   -> rewritten text + result
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/logging"
	"github.com/ginjaninja78/disperse-validator/internal/validation"
)

// MaxBodyBytes caps request bodies; recipient lists are plain text.
const MaxBodyBytes = 8 << 20

// Server is the HTTP server.
type Server struct {
	router  *gin.Engine
	handler *Handler
	logger  logging.Logger
}

// NewServer creates a server from the main configuration.
func NewServer(cfg *config.MainConfig, logger logging.Logger, version string) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	if cfg.Server.IsReleaseMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	options := validation.Options{
		CaseSensitiveDuplicates: cfg.Validation.CaseSensitiveDuplicates,
		ReportExtraFields:       cfg.Validation.ReportExtraFields,
	}

	s := &Server{
		router:  gin.New(),
		handler: NewHandler(options, logger, version),
		logger:  logger,
	}

	s.setupRoutes()

	return s
}

// setupRoutes installs middleware and routes.
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.handler.RegisterRoutes(api)
	}
}

// requestLogger logs one line per request at debug level, errors at warn.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		msg := "%s %s -> %d (%s)"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start)}
		if status >= http.StatusBadRequest {
			logger.Warn(msg, args...)
			return
		}
		logger.Debug(msg, args...)
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}
