package model

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/caratlab/jewel-studio/common/helper"
)

// Task is the ledger record of one generation task. The upstream holds the
// authoritative status; this table exists for history, reconciliation and
// cheap status reads.
type Task struct {
	Id               int    `json:"id"`
	TaskId           string `json:"task_id" gorm:"uniqueIndex"`
	Prompt           string `json:"prompt"`
	Type             string `json:"type"`
	Status           string `json:"status" gorm:"index"`
	Progress         int    `json:"progress"`
	ModelUrl         string `json:"model_url"`
	BaseModelUrl     string `json:"base_model_url"`
	RenderedImageUrl string `json:"rendered_image"`
	FailReason       string `json:"fail_reason"`
	CreatedAt        int64  `json:"created_at" gorm:"index"`
	UpdatedAt        int64  `json:"updated_at"`
	FinishedAt       int64  `json:"finished_at"`
}

func (task *Task) Insert() error {
	task.CreatedAt = helper.GetTimestamp()
	task.UpdatedAt = task.CreatedAt
	return DB.Create(task).Error
}

func (task *Task) Update() error {
	task.UpdatedAt = helper.GetTimestamp()
	return DB.Save(task).Error
}

func GetTaskByTaskId(taskId string) (*Task, error) {
	if taskId == "" {
		return nil, errors.New("taskId is empty")
	}
	var task Task
	result := DB.Where("task_id = ?", taskId).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no record found for task_id: %s", taskId)
		}
		return nil, result.Error
	}
	return &task, nil
}

// UpdateTaskStatus records a status observation. Terminal statuses also
// stamp FinishedAt.
func UpdateTaskStatus(taskId string, status string, progress int) error {
	task, err := GetTaskByTaskId(taskId)
	if err != nil {
		return err
	}
	task.Status = status
	task.Progress = progress
	if status == "success" || status == "failed" {
		task.FinishedAt = helper.GetTimestamp()
	}
	return task.Update()
}

// UpdateTaskOutput records the asset URLs of a finished task.
func UpdateTaskOutput(taskId string, modelUrl, baseModelUrl, renderedImageUrl string) error {
	task, err := GetTaskByTaskId(taskId)
	if err != nil {
		return err
	}
	task.ModelUrl = modelUrl
	task.BaseModelUrl = baseModelUrl
	task.RenderedImageUrl = renderedImageUrl
	return task.Update()
}

// GetUnfinishedTasks lists records the background sweeper should reconcile
// against the upstream.
func GetUnfinishedTasks(limit int) ([]*Task, error) {
	var tasks []*Task
	err := DB.Where("status NOT IN ?", []string{"success", "failed"}).
		Order("created_at asc").Limit(limit).Find(&tasks).Error
	return tasks, err
}

func GetAllTasks(startIdx int, num int) ([]*Task, error) {
	var tasks []*Task
	err := DB.Order("created_at desc").Limit(num).Offset(startIdx).Find(&tasks).Error
	return tasks, err
}

func CountTasks() (count int64, err error) {
	err = DB.Model(&Task{}).Count(&count).Error
	return count, err
}
