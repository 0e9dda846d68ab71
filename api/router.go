package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchcompare/api/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *server) setupRoutes(router *gin.Engine) {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.SetupConfig(router, s.logger, s.searchConfig, s.kvdb)
	handlers.SetupCompare(router, s.logger, s.orchestrator, s.history)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
