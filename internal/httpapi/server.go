// Package httpapi serves tutorial generation over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dusk-indust/tutorgen/internal/logger"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/runstore"
)

// Options configures a Handler.
type Options struct {
	// OutputDir receives exports of finished runs and is the directory
	// listed by GET /v1/tutorials. Empty disables both.
	OutputDir string
	Formats   []string
	// Detector backs GET /readyz. Nil means always ready.
	Detector orchestrator.Detector
	// Runs holds background runs started with POST /v1/runs. Nil means a
	// store with runstore.DefaultLimit.
	Runs     *runstore.Store
	Logger   *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler holds the collaborators of every route.
type Handler struct {
	pipeline orchestrator.Orchestrator
	opts     Options
	log      *logger.Logger
}

// NewHandler creates a Handler for pipeline.
func NewHandler(pipeline orchestrator.Orchestrator, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Runs == nil {
		opts.Runs = runstore.New(0)
	}
	return &Handler{pipeline: pipeline, opts: opts, log: opts.Logger}
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(h.log))

	r.GET("/healthz", h.Health)
	r.GET("/readyz", h.Ready)

	v1 := r.Group("/v1")
	{
		v1.POST("/tutorials", h.Generate)
		v1.POST("/tutorials/stream", h.Stream)
		v1.GET("/tutorials", h.List)
		v1.POST("/runs", h.StartRun)
		v1.GET("/runs", h.ListRuns)
		v1.GET("/runs/:id", h.GetRun)
	}
	return r
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, router http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
	}()

	log.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
