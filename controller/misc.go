package controller

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/common"
	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/relay/util"
)

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"version":        common.Version,
			"system_name":    config.SystemName,
			"server_address": config.ServerAddress,
			"materials":      []string{"gold", "silver", "roseGold", "platinum"},
		},
	})
}

// GetHealth reports process vitals for monitoring. `?check=upstream`
// additionally checks that the generation upstream answers at all, on a
// short timeout so a wedged upstream cannot wedge the health check.
func GetHealth(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	health := gin.H{
		"status":        "ok",
		"version":       common.Version,
		"goroutines":    runtime.NumGoroutine(),
		"alloc_bytes":   memStats.Alloc,
		"sys_bytes":     memStats.Sys,
		"num_gc":        memStats.NumGC,
		"redis_enabled": common.RedisEnabled,
		"service":       config.ServiceName,
	}
	if c.Query("check") == "upstream" {
		health["upstream"] = checkUpstream(c)
	}
	c.JSON(http.StatusOK, health)
}

// checkUpstream reports reachability only; any HTTP response counts, since
// auth and shape problems are the status endpoints' business.
func checkUpstream(c *gin.Context) string {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, config.TripoBaseURL, nil)
	if err != nil {
		return "unreachable"
	}
	resp, err := util.ImpatientHTTPClient.Do(req)
	if err != nil {
		return "unreachable"
	}
	resp.Body.Close()
	return "ok"
}
