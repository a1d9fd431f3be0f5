package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/common"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/model"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	TaskId string `json:"taskId"`
}

// GenerateModel runs the full flow in one request: create (or reuse) a
// task, poll it to a terminal state and resolve the best displayable asset.
// The response always carries an asset; in the worst case a placeholder.
func GenerateModel(c *gin.Context) {
	var req generateRequest
	if err := common.UnmarshalBodyReusable(c, &req); err != nil || (req.Prompt == "" && req.TaskId == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt or task ID is required"})
		return
	}

	ctx := c.Request.Context()
	taskId := req.TaskId
	if taskId == "" {
		created, apiErr := taskGenerator.CreateTask(ctx, req.Prompt)
		if apiErr != nil {
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		taskId = created
		record := &model.Task{TaskId: taskId, Prompt: req.Prompt, Status: "pending"}
		if err := record.Insert(); err != nil {
			logger.Errorf(ctx, "failed to record task %s: %s", taskId, err.Error())
		}
	}

	result, apiErr := taskGenerator.Generate(ctx, taskId, func(progress int) {
		logger.Debugf(ctx, "task %s progress: %d", taskId, progress)
	})
	if apiErr != nil {
		if apiErr.Type == relaymodel.ErrTypeTimeout {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Generation timed out"})
			return
		}
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		return
	}

	response := gin.H{
		"taskId":       result.TaskId,
		"asset":        result.Asset,
		"tiersSkipped": result.TiersSkipped,
	}
	if result.Geometry != nil {
		response["geometry"] = result.Geometry
	}
	c.JSON(http.StatusOK, response)
}
