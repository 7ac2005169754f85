// Package httpapi wires the admin HTTP transport (Gin) to the archive
// service, middleware, and route handlers. The surface is deliberately
// read-only: all writes flow through the messaging channel, and this API
// exists for operators (health, metrics, and document inspection).
package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docbot/internal/config"
	"docbot/internal/http/handlers"
	"docbot/internal/http/middleware"
	"docbot/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine.
//
// Middleware order:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured access logs
//  3. Recovery: capture panics after the logger so they carry the request id
//  4. Metrics
//  5. Gzip and CORS
func RegisterRoutes(r *gin.Engine, svc *services.ArchiveService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	if len(cfg.CORS.AllowedOrigins) > 0 {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = cfg.CORS.AllowedOrigins
		r.Use(cors.New(cc))
	}

	h := handlers.New(svc)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/documents", h.ListDocuments)
		v1.GET("/documents/:id", h.GetDocument)
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, 404, handlers.ErrCodeNotFound, "route not found")
	})
}
