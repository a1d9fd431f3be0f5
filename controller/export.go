package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/relay/channel/tripo"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
	"github.com/caratlab/jewel-studio/scene"
)

type exportRequest struct {
	TaskId   string `json:"taskId" binding:"required"`
	Material string `json:"material" binding:"omitempty,material"`
	Size     string `json:"size" binding:"omitempty,oneof=small medium large"`
	Format   string `json:"format" binding:"omitempty,oneof=stl stl-ascii obj"`
}

var exportContentTypes = map[string]string{
	"stl":       "model/stl",
	"stl-ascii": "model/stl",
	"obj":       "model/obj",
}

// ExportModel materializes a finished task and streams the mesh back as a
// download. Material and size are applied the way the viewer would.
func ExportModel(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid export request: " + err.Error()})
		return
	}
	if req.Format == "" {
		req.Format = "stl"
	}

	ctx := c.Request.Context()
	task, apiErr := taskGenerator.Adaptor.GetTaskStatus(ctx, req.TaskId)
	if apiErr != nil {
		task = tripo.SyntheticRunningTask(req.TaskId)
	}
	if task.Status != relaymodel.TaskStatusSuccess {
		c.JSON(http.StatusConflict, gin.H{"error": "Task has no finished model to export"})
		return
	}

	result := taskGenerator.Materialize(ctx, task)
	if result.Mesh == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Task resolved to a 2D image, nothing to export"})
		return
	}

	session := scene.NewSession()
	defer session.Dispose()
	if req.Material != "" {
		if err := session.SetMaterial(req.Material); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Size != "" {
		if err := session.SetScale(scene.SizeCategory(req.Size)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := session.SetModel(scene.NewNode(result.TaskId, result.Mesh), session.BeginLoad()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := session.Export(&buf, req.Format); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed: " + err.Error()})
		return
	}

	ext := "stl"
	if req.Format == "obj" {
		ext = "obj"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, req.TaskId, ext))
	c.Data(http.StatusOK, exportContentTypes[req.Format], buf.Bytes())
}
