package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/preflight"
)

// Options wires the server to its collaborators. History and Health are
// optional.
type Options struct {
	Config   *config.Config
	Pipeline Pipeline
	History  History
	Health   HealthFunc
	Logger   *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	pipeline Pipeline
	history  History
	health   HealthFunc
	logger   *slog.Logger
	engine   *gin.Engine

	listener net.Listener
	server   *http.Server
}

// NewServer builds the router.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Pipeline == nil {
		return nil, errors.New("api server requires config and pipeline")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	health := opts.Health
	if health == nil {
		cfg := opts.Config
		health = func(ctx context.Context) preflight.Report { return preflight.RunAll(ctx, cfg) }
	}
	s := &Server{
		cfg:      opts.Config,
		pipeline: opts.Pipeline,
		history:  opts.History,
		health:   health,
		logger:   logging.NewComponentLogger(logger, "api-server"),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the gin engine.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.logger), requestLogging(s.logger), corsMiddleware(s.cfg.Paths.CORSOrigins))

	r.GET("/health", s.handleHealth)
	r.Static("/files", s.cfg.ClipsDir())

	authed := r.Group("/", authMiddleware(s.cfg.Paths.APIToken))
	authed.POST("/upload", s.handleUpload)
	authed.GET("/status", s.handleStatus)
	authed.GET("/clips", s.handleListClips)
	authed.GET("/clips/:id", s.handleGetClipConfig)
	authed.POST("/clips/:id/config", s.handleSaveClipConfig)
	authed.POST("/clips/:id/render", s.handleRender)
	authed.GET("/runs", s.handleListRuns)
	authed.GET("/runs/:id", s.handleGetRun)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	})
	return r
}

// Start listens on the configured bind address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.cfg.Paths.APIToken != ""),
	)
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
