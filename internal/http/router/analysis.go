package router

import (
	"github.com/gin-gonic/gin"

	"supportlens.app/triage/internal/http/handler"
)

func AnalysisRouter(router *gin.RouterGroup, handler *handler.AnalysisHandler) {
	router.POST("", handler.Analyze)
}
