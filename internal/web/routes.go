// Package web exposes the widget data over HTTP for the portfolio front-end.
// Every data endpoint answers 200 with a renderable body; upstream failures
// degrade to empty results instead of error responses.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mattbolanos/portfolio-api/internal/lastfm"
	"github.com/mattbolanos/portfolio-api/internal/strava"
)

type Handler struct {
	activities *strava.Service
	tracks     *lastfm.Service
}

func NewHandler(activities *strava.Service, tracks *lastfm.Service) *Handler {
	return &Handler{
		activities: activities,
		tracks:     tracks,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/activities", h.Activities)
	api.GET("/tracks", h.RecentTracks)
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Activities serves the run heatmap aggregation.
func (h *Handler) Activities(c *gin.Context) {
	c.JSON(http.StatusOK, h.activities.Activities(c.Request.Context()))
}

// RecentTracks serves the recent-scrobbles widget.
func (h *Handler) RecentTracks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tracks": h.tracks.Recent(c.Request.Context())})
}
