package api

import (
	"github.com/gin-gonic/gin"

	"compsengine/server/internal/comps"
	"compsengine/server/internal/queue"
)

func SetupRoutes(router *gin.Engine, engine *comps.Engine, ingestQueue *queue.IngestQueue) {
	handler := NewHandler(engine, ingestQueue, nil)

	api := router.Group("/api")
	{
		api.GET("/properties/:id/comps", handler.GetCompsDashboard)
		api.GET("/properties/:id/comps/sales", handler.GetSaleComps)
		api.GET("/properties/:id/comps/rentals", handler.GetRentalComps)
		api.POST("/properties", handler.IngestProperties)
		api.POST("/research", handler.IngestResearch)
	}
}
