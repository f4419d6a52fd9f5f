package api

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ericlein/Eribot/internal/journal"
)

// IncidentReader loads recent journal rows for the incidents endpoint.
// Nil when persistence is disabled.
type IncidentReader interface {
	RecentTransitions(ctx context.Context, limit int) ([]journal.TransitionRecord, error)
	RecentOutcomes(ctx context.Context, limit int) ([]journal.OutcomeRecord, error)
}

type Api struct {
	status   *StatusStore
	reader   IncidentReader
	router   *gin.Engine
	hostname string
	started  time.Time
}

func NewApi(router *gin.Engine, status *StatusStore, reader IncidentReader) (*Api, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	api := &Api{
		status:   status,
		reader:   reader,
		router:   router,
		hostname: hostname,
		started:  time.Now(),
	}

	api.setupRouters(router)
	return api, nil
}

func (api *Api) setupRouters(router *gin.Engine) {
	router.GET("/healthz", api.handleHealthz)
	router.GET("/status", api.handleStatus)
	router.GET("/incidents", api.handleIncidents)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
