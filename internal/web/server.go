// Package web serves the dashboard UI and its JSON API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"TickerScope/internal/logger"
	"TickerScope/internal/monitor"
	"TickerScope/internal/state"
)

// Refresher triggers a refresh cycle for the controls currently in the
// store. Satisfied by scheduler.Scheduler.
type Refresher interface {
	RunRefresh(trigger string) state.Snapshot
}

// Server hosts the dashboard.
type Server struct {
	addr           string
	router         *gin.Engine
	store          *state.Store
	refresher      Refresher
	monitor        *monitor.Monitor
	pageRefreshSec int
	minDate        string
}

// ServerConfig describes the dashboard server dependencies.
type ServerConfig struct {
	Addr           string
	Store          *state.Store
	Refresher      Refresher
	Monitor        *monitor.Monitor
	PageRefreshSec int
	MinDate        string // lower bound for the date pickers
}

// NewServer builds the dashboard HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil || cfg.Refresher == nil {
		return nil, errors.New("dashboard server requires store and refresher")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.PageRefreshSec <= 0 {
		cfg.PageRefreshSec = 3600
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Monitor))

	s := &Server{
		addr:           cfg.Addr,
		router:         router,
		store:          cfg.Store,
		refresher:      cfg.Refresher,
		monitor:        cfg.Monitor,
		pageRefreshSec: cfg.PageRefreshSec,
		minDate:        cfg.MinDate,
	}

	if err := loadTemplates(router); err != nil {
		return nil, err
	}

	router.GET("/", s.handleIndex)
	router.POST("/refresh", s.handleRefresh)
	router.GET("/charts/price", s.handlePriceChart)
	router.GET("/charts/volume", s.handleVolumeChart)

	api := router.Group("/api")
	api.GET("/state", s.handleState)
	api.GET("/table", s.handleTable)
	api.GET("/stats", s.handleStats)
	api.GET("/export.xlsx", s.handleExport)
	api.GET("/snapshot.png", s.handleSnapshot)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Monitor != nil {
		router.GET("/metrics", gin.WrapH(cfg.Monitor.Handler()))
	}

	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// ServeHTTP dispatches to the underlying router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the HTTP server until ctx is cancelled or it fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Infof("dashboard listening on %s", s.addr)
	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// requestLogger traces served requests and feeds the HTTP metrics.
func requestLogger(mon *monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = path
		}
		if mon != nil {
			mon.RecordHTTP(route, status, dur.Seconds())
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, path, status, c.ClientIP(), dur)
	}
}
