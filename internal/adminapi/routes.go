// Package adminapi is the engine's operator-facing HTTP surface: health
// checks, result-code statistics, the active policy configuration, a
// KML export of the loaded geofence, and a live decision-feed
// websocket. Grounded on the teacher's internal/api/routes.go router
// shape, adapted to the privacy engine's own resources instead of
// Bitcoin investigation/watchlist endpoints.
package adminapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/usdot-its/ppm/internal/config"
	"github.com/usdot-its/ppm/internal/highway"
	"github.com/usdot-its/ppm/internal/ppm"
	"github.com/usdot-its/ppm/internal/ppmlog"
)

// Handler holds the resources the admin routes read from. All fields
// are read-only after construction.
type Handler struct {
	Engine   *ppm.Engine
	Settings config.Settings
	Hub      *Hub
	Shapes   []GeofenceKML
	Log      *ppmlog.Logger
}

// GeofenceKML is one loaded shape rendered as a KML fragment, for the
// /geofence.kml export endpoint.
type GeofenceKML struct {
	UID uint64
	KML string
}

// NewRouter builds the gin engine with every admin route registered.
// The decision-feed websocket is exempt from the bearer-token and
// rate-limit middleware, matching the teacher's "public endpoints are
// excluded" carve-out for its own streaming route.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceIDMiddleware())

	r.GET("/decisions", h.Hub.Subscribe)

	limiter := NewRateLimiter(120, 30)
	protected := r.Group("/")
	protected.Use(AuthMiddleware(h.Log), limiter.Middleware())
	protected.GET("/healthz", h.healthz)
	protected.GET("/stats", h.stats)
	protected.GET("/config", h.config)
	protected.GET("/geofence.kml", h.geofenceKML)

	return r
}

// traceIDMiddleware attaches a per-request trace id, mirroring the
// per-message trace id attached to decision log lines.
func traceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("traceId", uuid.NewString())
		c.Next()
	}
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) stats(c *gin.Context) {
	snapshot := h.Engine.Stats.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"results":             snapshot,
		"total":               h.Engine.Stats.Total(),
		"blacklistedWayEdges": highway.BlacklistHits(),
	})
}

func (h *Handler) config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"geofenceActive":   h.Engine.GeofenceActive,
		"boxExtensionM":    h.Engine.BoxExtensionM,
		"velocityActive":   h.Engine.Velocity.Active,
		"velocityMin":      h.Engine.Velocity.Min,
		"velocityMax":      h.Engine.Velocity.Max,
		"sizeRedactActive": h.Engine.SizeRedactActive,
		"partIIActive":     h.Engine.PartIIActive,
		"partIIFieldCount": h.Engine.PartIIFields.Len(),
		"workerCount":      h.Settings.WorkerCount,
		"consumerTopic":    h.Settings.ConsumerTopic,
		"producerTopic":    h.Settings.ProducerTopic,
	})
}

func (h *Handler) geofenceKML(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.google-earth.kml+xml")
	c.String(http.StatusOK, renderKMLDocument(h.Shapes))
}

func renderKMLDocument(shapes []GeofenceKML) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?><kml xmlns="http://www.opengis.net/kml/2.2"><Document>`
	for _, s := range shapes {
		doc += s.KML
	}
	doc += `</Document></kml>`
	return doc
}
