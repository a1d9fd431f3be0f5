package router

import (
	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/controller"
	"github.com/caratlab/jewel-studio/middleware"
)

// The generate route runs the full upstream flow inside one request, so it
// gets its own group with panic recovery.
func SetRelayRouter(router *gin.Engine) {
	generateRouter := router.Group("/api")
	generateRouter.Use(middleware.PanicRecover())
	{
		generateRouter.POST("/generate", controller.GenerateModel)
		generateRouter.POST("/export", controller.ExportModel)
	}
}
