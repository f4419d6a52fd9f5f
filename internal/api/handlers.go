package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ericlein/Eribot/internal/monitor"
)

func (api *Api) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

type statusResponse struct {
	Hostname         string               `json:"hostname"`
	Uptime           string               `json:"uptime"`
	States           []monitor.AlertState `json:"states"`
	Stats            monitor.Stats        `json:"stats"`
	LastTickAt       *time.Time           `json:"last_tick_at,omitempty"`
	LastTickDuration string               `json:"last_tick_duration,omitempty"`
}

func (api *Api) handleStatus(c *gin.Context) {
	resp := statusResponse{
		Hostname: api.hostname,
		Uptime:   time.Since(api.started).Round(time.Second).String(),
		States:   []monitor.AlertState{},
	}

	if snap, ok := api.status.Latest(); ok {
		resp.States = snap.States
		resp.Stats = snap.Stats
		resp.LastTickAt = &snap.LastTickAt
		resp.LastTickDuration = snap.LastTickDuration.String()
	}

	c.JSON(http.StatusOK, resp)
}

func (api *Api) handleIncidents(c *gin.Context) {
	if api.reader == nil {
		c.JSON(http.StatusNotFound, map[string]any{"error": map[string]any{"code": "NOT_FOUND", "message": "incident journal is not configured"}})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, map[string]any{"error": map[string]any{"code": "INVALID_PARAMETER", "message": "limit must be 1-100"}})
			return
		}
		limit = n
	}

	transitions, err := api.reader.RecentTransitions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()}})
		return
	}
	outcomes, err := api.reader.RecentOutcomes(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, map[string]any{"error": map[string]any{"code": "INTERNAL_ERROR", "message": err.Error()}})
		return
	}

	c.JSON(http.StatusOK, map[string]any{
		"transitions": transitions,
		"outcomes":    outcomes,
	})
}
