package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/gin-gonic/gin"
)

func PanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.SysError(fmt.Sprintf("panic detected: %v", err))
				logger.SysError(fmt.Sprintf("stacktrace from panic: %s", string(debug.Stack())))
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"message": fmt.Sprintf("Panic detected, error: %v", err),
						"type":    "jewel_studio_panic",
					},
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
