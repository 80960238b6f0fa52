// Package restserver serves the transition-history API, the latest
// snapshot, and operational endpoints.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/brugmelding/brugwacht/internal/history"
	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/metrics"
	"github.com/brugmelding/brugwacht/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	restConfig   config.RESTServerData
	Server       http.Server
	reader       *history.Reader
	snapshotPath string
	metrics      *metrics.Metrics
	logger       *zap.SugaredLogger
	handlers     *Handlers
}

// NewController creates a new REST server controller. reader may be nil
// when no history store is configured; the history endpoint then reports
// service unavailable.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, reader *history.Reader, snapshotPath string, m *metrics.Metrics, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		restConfig:   rc,
		reader:       reader,
		snapshotPath: snapshotPath,
		metrics:      m,
		logger:       logger,
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/history", c.handlers.GetHistory)
	router.HandleFunc("/snapshot", c.handlers.GetSnapshot)
	router.HandleFunc("/health", c.handlers.GetHealth)

	if c.metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(c.metrics.Registry, promhttp.HandlerOpts{}))
	}

	return router
}
