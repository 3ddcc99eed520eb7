package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lendwise/landing/api/handler"
	"github.com/lendwise/landing/api/middleware"
	"github.com/lendwise/landing/config"
)

// NewRouter creates a configured Gin engine serving the landing page.
//
// Middleware chain:
//
//	Recovery → Logger → RateLimit (if enabled) → NoCache
//
// Every GET/HEAD path is answered from the root directory; there are no
// other routes.
func NewRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit))
	}
	r.Use(middleware.NoCache(cfg.Server.Entry, cfg.Server.NoCacheExtensions))

	static := handler.Static(cfg.Server.Root, cfg.Server.Entry)
	r.GET("/*filepath", static)
	r.HEAD("/*filepath", static)

	return r
}
