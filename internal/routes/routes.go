package routes

import (
	"net/http"

	"wms-alloc/internal/config"
	"wms-alloc/internal/middlewares"
	allocservice "wms-alloc/internal/services/alloc-service"
	authservice "wms-alloc/internal/services/auth-service"
	extensivservice "wms-alloc/internal/services/extensiv-service"
	orderfileservice "wms-alloc/internal/services/orderfile-service"
	reportservice "wms-alloc/internal/services/report-service"
	runlogservice "wms-alloc/internal/services/runlog-service"
	"wms-alloc/internal/utils"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, cfg config.Config) {
	router.Use(middlewares.CorsMiddleware())

	router.GET("/Health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": cfg.AppName})
	})

	router.POST("/Login", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, authservice.Login)
	})

	authed := router.Group("/", middlewares.AuthMiddleware(cfg.JWTSecret))

	authed.POST("/Alloc/Plan", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, allocservice.PlanAllocation)
	})

	authed.POST("/Alloc/GetOrderLines", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, allocservice.GetOrderLines)
	})

	authed.POST("/Alloc/SearchOrders", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, allocservice.SearchOrders)
	})

	authed.POST("/Alloc/Push", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, extensivservice.PushOrderAllocations)
	})

	authed.POST("/Alloc/GetRunLogs", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, runlogservice.GetRunLogs)
	})

	authed.POST("/Extensiv/ImportOrders", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, extensivservice.ImportOrders)
	})

	authed.POST("/Extensiv/ImportInventory", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, extensivservice.ImportInventory)
	})

	authed.GET("/Extensiv/TokenInfo", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, extensivservice.GetTokenInfo)
	})

	authed.POST("/Report/AllocationSummary", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, reportservice.AllocationSummary)
	})

	authed.POST("/OrderFile/Pull", func(c *gin.Context) {
		utils.ProcessRequestPayload(c, orderfileservice.PullOrderFiles)
	})

	authed.POST("/OrderFile/Upload", func(c *gin.Context) {
		utils.ProcessRequestMultiPart(c, orderfileservice.UploadOrders)
	})
}
