// Package server exposes the dashboard over HTTP: the page, JSON views,
// PNG charts, the control-event endpoint and its websocket twin.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"house-dashboard/config"
	"house-dashboard/models"
	"house-dashboard/services"
	"house-dashboard/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the dashboard HTTP server.
type Server struct {
	cfg        *config.Config
	logger     *utils.Logger
	summary    *models.Summary
	dispatcher *services.Dispatcher
	metrics    *Metrics
	engine     *gin.Engine
	httpServer *http.Server
}

// New wires the routes for an already loaded dataset and its summary.
func New(cfg *config.Config, ds *models.Dataset, summary *models.Summary, logger *utils.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		summary:    summary,
		dispatcher: services.NewDispatcher(ds, logger),
		metrics:    NewMetrics(),
		engine:     gin.New(),
	}
	s.metrics.houses.Set(float64(ds.Len()))

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	s.routes()

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api/v1")
	api.GET("/summary", s.handleSummary)
	api.GET("/controls", s.handleControls)
	api.POST("/events", s.handleEvent)
	api.GET("/views/map", s.handleMapView)
	api.GET("/views/scatter", s.handleScatterView)
	api.GET("/views/bar", s.handleBarView)

	s.engine.GET("/charts/:figure", s.handleChart)
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("[server] Dashboard listening on %s", s.cfg.HTTPAddr)
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown serves until SIGINT/SIGTERM, then drains open
// requests for up to 30 seconds.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.logger.Info("[server] Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}
