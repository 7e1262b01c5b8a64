// Package httpapi exposes the reference-data service over HTTP/JSON:
//
//	GET    /api/mantenedores/version
//	GET    /api/mantenedores
//	GET    /api/mantenedores/types
//	GET    /api/mantenedores/type/:type
//	POST   /api/mantenedores
//	PUT    /api/mantenedores/:id
//	DELETE /api/mantenedores/:id
//
// Error envelope: {"error": "..."} for single-message failures and
// {"errors": ["...", ...]} with status 422 for validation rejections.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/mgallardo/freightdeck/internal/logging"
	"github.com/mgallardo/freightdeck/internal/server/service"
)

// New builds the router. An empty secret disables bearer authentication; a
// non-empty one requires a valid HS256 token on every endpoint.
func New(svc *service.Service, secret []byte, log logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	h := &handler{svc: svc, log: log}

	api := router.Group("/api/mantenedores")
	if len(secret) > 0 {
		api.Use(authRequired(secret))
	}

	api.GET("", h.snapshot)
	api.GET("/version", h.version)
	api.GET("/types", h.types)
	api.GET("/type/:type", h.listByType)
	api.POST("", h.create)
	api.PUT("/:id", h.update)
	api.DELETE("/:id", h.remove)

	return router
}
