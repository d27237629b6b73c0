package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sprintwatch/internal/config"
)

// NewRouter builds the gin engine for the dashboard API.
func NewRouter(cfg *config.AppConfig, st *State) *gin.Engine {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})

	h := NewHandlers(st)

	r.GET("/healthz", h.Healthz)
	r.GET("/api/report", h.GetReport)
	r.GET("/api/metrics", h.GetMetrics)
	r.GET("/api/alerts", h.GetAlerts)
	r.GET("/api/workload", h.GetWorkload)
	r.GET("/api/burndown", h.GetBurndown)
	r.GET("/api/dismissals", h.ListDismissals)
	r.POST("/api/dismissals", h.PostDismissal)
	r.GET("/api/snapshots", h.GetSnapshotInfo)
	r.POST("/api/snapshots", h.UploadSnapshot)

	return r
}
