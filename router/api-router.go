package router

import (
	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/controller"
	"github.com/caratlab/jewel-studio/middleware"
)

func SetApiRouter(router *gin.Engine) {
	router.Use(middleware.CORS())
	apiRouter := router.Group("/api")
	{
		apiRouter.GET("/status", controller.GetStatus)
		apiRouter.GET("/monitor/health", controller.GetHealth)

		taskRoute := apiRouter.Group("/task")
		{
			taskRoute.POST("", controller.CreateTask)
			taskRoute.GET("/status", controller.GetTaskStatus)
			taskRoute.GET("/all", controller.GetAllTasks)
		}

		apiRouter.POST("/enhance", controller.EnhanceImage)
		apiRouter.POST("/vision-to-prompt", controller.VisionToPrompt)
		apiRouter.GET("/generated/:id", controller.GetGeneratedImage)
	}
}
