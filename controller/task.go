package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/model"
	"github.com/caratlab/jewel-studio/relay/channel/tripo"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

type createTaskRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// CreateTask submits a text-to-model generation task.
func CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	taskId, apiErr := taskGenerator.CreateTask(c.Request.Context(), req.Prompt)
	if apiErr != nil {
		c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
		return
	}

	task := &model.Task{
		TaskId: taskId,
		Prompt: req.Prompt,
		Type:   tripo.RequestTypeTextToModel,
		Status: "pending",
	}
	if err := task.Insert(); err != nil {
		logger.Errorf(c.Request.Context(), "failed to record task %s: %s", taskId, err.Error())
	}

	c.JSON(http.StatusOK, gin.H{"taskId": taskId})
}

// GetTaskStatus reports task progress. Always HTTP 200: upstream failures
// are converted to a synthetic running status so the polling UI never sees
// an error response.
func GetTaskStatus(c *gin.Context) {
	taskId := c.Query("taskId")
	if taskId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	ctx := c.Request.Context()
	task, apiErr := taskGenerator.Adaptor.GetTaskStatus(ctx, taskId)
	if apiErr != nil {
		logger.Warnf(ctx, "status check for %s degraded to last known record: %s", taskId, apiErr.Message)
		task = lastKnownTask(taskId)
	} else {
		recordObservation(ctx, task)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        string(task.Status),
		"progress":      task.Progress,
		"modelUrl":      task.Output.PrimaryMeshUrl,
		"baseModelUrl":  task.Output.SecondaryMeshUrl,
		"renderedImage": task.Output.RenderedImageUrl,
	})
}

// GetAllTasks lists the ledger, newest first, with the total for paging.
func GetAllTasks(c *gin.Context) {
	p, _ := strconv.Atoi(c.Query("p"))
	if p < 0 {
		p = 0
	}
	tasks, err := model.GetAllTasks(p*config.ItemsPerPage, config.ItemsPerPage)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	total, err := model.CountTasks()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "", "data": tasks, "total": total})
}

// UpdateUnfinishedTasks is the sweeper pass: reconcile unfinished ledger
// records against the upstream.
func UpdateUnfinishedTasks(ctx context.Context) {
	tasks, err := model.GetUnfinishedTasks(100)
	if err != nil {
		logger.Errorf(ctx, "sweeper: failed to list unfinished tasks: %s", err.Error())
		return
	}
	if len(tasks) == 0 {
		return
	}
	logger.Infof(ctx, "sweeper: reconciling %d unfinished tasks", len(tasks))
	for _, task := range tasks {
		observed, apiErr := taskGenerator.Adaptor.GetTaskStatus(ctx, task.TaskId)
		if apiErr != nil {
			continue
		}
		recordObservation(ctx, observed)
	}
}

// lastKnownTask serves the most recent cached or ledgered observation when
// the upstream is unreachable. A task nobody ever recorded degrades to
// synthetic running progress.
func lastKnownTask(taskId string) *relaymodel.GenerationTask {
	record, err := model.CacheGetTask(taskId)
	if err != nil {
		return tripo.SyntheticRunningTask(taskId)
	}
	return &relaymodel.GenerationTask{
		TaskId:   record.TaskId,
		Status:   relaymodel.NormalizeTaskStatus(record.Status),
		Progress: record.Progress,
		Output: relaymodel.TaskOutput{
			PrimaryMeshUrl:   record.ModelUrl,
			SecondaryMeshUrl: record.BaseModelUrl,
			RenderedImageUrl: record.RenderedImageUrl,
		},
	}
}

func recordObservation(ctx context.Context, task *relaymodel.GenerationTask) {
	if err := model.UpdateTaskStatus(task.TaskId, string(task.Status), task.Progress); err != nil {
		logger.Debugf(ctx, "ledger update for %s skipped: %s", task.TaskId, err.Error())
		return
	}
	if !task.Output.Empty() {
		if err := model.UpdateTaskOutput(task.TaskId, task.Output.PrimaryMeshUrl, task.Output.SecondaryMeshUrl, task.Output.RenderedImageUrl); err != nil {
			logger.Debugf(ctx, "ledger output update for %s skipped: %s", task.TaskId, err.Error())
		}
	}
	if record, err := model.GetTaskByTaskId(task.TaskId); err == nil {
		if err := model.CacheSetTask(record); err != nil {
			logger.Debugf(ctx, "task cache update for %s skipped: %s", task.TaskId, err.Error())
		}
	}
}
