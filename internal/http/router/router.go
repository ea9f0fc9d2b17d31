package router

import (
	"github.com/gin-gonic/gin"

	"supportlens.app/triage/internal/analysis"
	"supportlens.app/triage/internal/http/handler"
)

type RouterConfig struct {
	TraceHeaderName string
}

func SetupRoutes(router *gin.Engine, svc analysis.Service, cfg RouterConfig) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		analysisHandler := handler.NewAnalysisHandler(svc, cfg.TraceHeaderName)
		AnalysisRouter(v1.Group("/analysis"), analysisHandler)
	}
}
