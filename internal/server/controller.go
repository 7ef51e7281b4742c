// Package server exposes the analysis service over a REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/trailcam/camtrap-activity/internal/analysis"
	"github.com/trailcam/camtrap-activity/internal/log"
	"github.com/trailcam/camtrap-activity/pkg/config"
)

// DefaultListenAddr is used when the configuration does not set one.
const DefaultListenAddr = ":8090"

// Controller represents the REST server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	site     config.SiteData
	Server   http.Server
	service  *analysis.Service
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.Data, service *analysis.Service, logger *zap.SugaredLogger) (*Controller, error) {
	if service == nil {
		return nil, fmt.Errorf("server: analysis service is required")
	}

	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		site:    cfg.Site,
		service: service,
		logger:  logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	listenAddr := cfg.HTTP.ListenAddr
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/species", ctrl.handlers.GetSpecies)
	router.HandleFunc("/api/activity/{species}", ctrl.handlers.GetActivity)
	router.HandleFunc("/api/overlap/{speciesA}/{speciesB}", ctrl.handlers.GetOverlap)
	router.HandleFunc("/api/suncycle", ctrl.handlers.GetSunCycle)
	router.HandleFunc("/health", ctrl.handlers.GetHealth)

	ctrl.Server = http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // bootstrap requests can be slow
	}

	return ctrl, nil
}

// Start launches the HTTP listener and a watcher that shuts it down when
// the controller context is cancelled.
func (c *Controller) Start() error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		log.Infof("REST server listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}
