package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/common"
	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/common/storage"
	"github.com/caratlab/jewel-studio/controller"
	"github.com/caratlab/jewel-studio/middleware"
	"github.com/caratlab/jewel-studio/model"
	"github.com/caratlab/jewel-studio/router"
	"github.com/caratlab/jewel-studio/service"
)

// sweepUnfinishedTasks reconciles unfinished ledger records against the
// upstream on a fixed interval.
func sweepUnfinishedTasks(ctx context.Context) {
	ticker := time.NewTicker(config.TaskSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		controller.UpdateUnfinishedTasks(ctx)
	}
}

func main() {
	common.Init()
	logger.SetupLogger()
	logger.SysLog(fmt.Sprintf("%s %s started", config.SystemName, common.Version))
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.DebugEnabled {
		logger.SysLog("running in debug mode")
	}

	if err := model.InitDB(); err != nil {
		logger.FatalLog("failed to initialize database: " + err.Error())
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.FatalLog("failed to close database: " + err.Error())
		}
	}()

	if err := common.InitRedisClient(); err != nil {
		logger.FatalLog("failed to initialize Redis: " + err.Error())
	}

	store, err := storage.Setup()
	if err != nil {
		logger.FatalLog("failed to initialize storage: " + err.Error())
	}

	generator := service.NewGenerator()
	enhancer := service.NewEnhancer(store)
	controller.Setup(generator, enhancer, store)

	if config.TaskSweepEnabled {
		ctx := context.Background()
		common.TaskCtxGo(ctx, func() {
			sweepUnfinishedTasks(ctx)
		})
	}

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middleware.RequestId())
	server.Use(middleware.PanicRecover())
	middleware.SetUpLogger(server)

	router.SetRouter(server)

	port := os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	logger.SysLog("server started on http://localhost:" + port)
	if err := server.Run(":" + port); err != nil {
		logger.FatalLog("failed to start HTTP server: " + err.Error())
	}
}
