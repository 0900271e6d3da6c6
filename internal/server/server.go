// Package server exposes onboarding over HTTP: JSON endpoints for each
// orchestrator operation and a WebSocket progress stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
)

// Server implements the onboarding HTTP API
type Server struct {
	manager  *orchestrator.Manager
	settings config.APISettings
	secret   []byte
	hub      *Hub
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
	mu     sync.Mutex
	active map[string]bool
}

const shutdownTimeout = 10 * time.Second

// New creates the server and subscribes its hub to the manager's progress.
func New(m *orchestrator.Manager, settings config.APISettings, logger *slog.Logger) (*Server, error) {
	if settings.JWTSecret == "" {
		return nil, ErrNoJWTSecret
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		manager:  m,
		settings: settings,
		secret:   []byte(settings.JWTSecret),
		hub:      NewHub(logger),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		active:   map[string]bool{},
	}

	prev := m.OnProgress
	m.OnProgress = func(c orchestrator.Change) {
		if prev != nil {
			prev(c)
		}
		s.hub.Publish(c)
	}
	return s, nil
}

// Hub returns the progress hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes configures and returns the HTTP router
func (s *Server) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(_ *gin.Context, _ *slog.Logger) *slog.Logger {
			return s.logger
		}),
	))
	router.Use(cors.New(s.corsConfig()))

	router.GET("/health", s.handleHealth)

	ob := router.Group("/onboarding/:userID", s.authenticate())
	{
		ob.GET("", s.getView)
		ob.POST("/start", s.start)
		ob.POST("/run", s.run)
		ob.POST("/substeps/:substepID/execute", s.execute)
		ob.POST("/substeps/:substepID/reset", s.reset)
		ob.POST("/steps/:stepID/defer", s.deferStep)
		ob.POST("/steps/:stepID/resume", s.resumeStep)
		ob.GET("/ws", s.handleWebSocket)
	}
	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range s.settings.AllowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(s.settings.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = s.settings.AllowOrigins
	cfg.AllowCredentials = true
	return cfg
}

// ListenAndServe serves until ctx is done, then drains background runs and
// closes WebSocket clients.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.settings.Host, strconv.Itoa(s.settings.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close cancels background runs, waits for them and closes all sockets.
func (s *Server) Close() {
	s.cancel()
	s.runs.Wait()
	s.hub.CloseAll()
}

// Wait blocks until every background run has returned.
func (s *Server) Wait() {
	s.runs.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "blocks"})
}

func (s *Server) getView(c *gin.Context) {
	v, err := s.manager.View(c.Request.Context(), c.Param("userID"))
	s.respond(c, v, err)
}

type startRequest struct {
	Idea     string `json:"idea"`
	Audience string `json:"audience"`
}

func (s *Server) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	v, err := s.manager.Start(c.Request.Context(), c.Param("userID"), req.Idea, req.Audience)
	s.respond(c, v, err)
}

// run starts the pipeline in the background and answers 202 at once;
// progress is observed through the WebSocket stream.
func (s *Server) run(c *gin.Context) {
	userID := c.Param("userID")
	if v, err := s.manager.Ready(c.Request.Context(), userID); err != nil {
		s.respond(c, v, err)
		return
	}
	s.mu.Lock()
	if s.active[userID] {
		s.mu.Unlock()
		v, _ := s.manager.View(c.Request.Context(), userID)
		s.fail(c, ErrRunActive, &v)
		return
	}
	s.active[userID] = true
	s.runs.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.runs.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, userID)
			s.mu.Unlock()
		}()
		if _, err := s.manager.Run(s.ctx, userID); err != nil {
			s.logger.Warn("Background run stopped", log.UserID(userID), log.Error(err))
		}
	}()

	v, err := s.manager.View(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusAccepted, v)
}

func (s *Server) execute(c *gin.Context) {
	v, err := s.manager.Execute(c.Request.Context(), c.Param("userID"), c.Param("substepID"))
	s.respond(c, v, err)
}

func (s *Server) reset(c *gin.Context) {
	v, err := s.manager.Reset(c.Request.Context(), c.Param("userID"), c.Param("substepID"))
	s.respond(c, v, err)
}

func (s *Server) deferStep(c *gin.Context) {
	v, err := s.manager.Defer(c.Request.Context(), c.Param("userID"), c.Param("stepID"))
	s.respond(c, v, err)
}

func (s *Server) resumeStep(c *gin.Context) {
	v, err := s.manager.Resume(c.Request.Context(), c.Param("userID"), c.Param("stepID"))
	s.respond(c, v, err)
}

func (s *Server) handleWebSocket(c *gin.Context) {
	userID := c.Param("userID")
	v, err := s.manager.View(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	s.hub.Serve(c.Writer, c.Request, userID, v)
}

func (s *Server) respond(c *gin.Context, v orchestrator.View, err error) {
	if err != nil {
		var view *orchestrator.View
		if v.UserID != "" {
			view = &v
		}
		s.fail(c, err, view)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) fail(c *gin.Context, err error, v *orchestrator.View) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			log.UserID(c.Param("userID")),
			slog.String("path", c.FullPath()),
			log.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Status: status, View: v})
}
