package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/caratlab/jewel-studio/common"
	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
)

// Redis-backed task status cache. When Redis is off every read goes to the
// database; callers never notice the difference. Entries expire on TTL,
// nothing deletes them eagerly.

func taskCacheKey(taskId string) string {
	return fmt.Sprintf("task:%s", taskId)
}

func CacheSetTask(task *Task) error {
	if !common.RedisEnabled {
		return nil
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return common.RedisSet(taskCacheKey(task.TaskId), string(data), time.Duration(config.TaskCacheTTL)*time.Second)
}

func CacheGetTask(taskId string) (*Task, error) {
	if !common.RedisEnabled {
		return GetTaskByTaskId(taskId)
	}
	data, err := common.RedisGet(taskCacheKey(taskId))
	if err != nil {
		task, err := GetTaskByTaskId(taskId)
		if err != nil {
			return nil, err
		}
		if err := CacheSetTask(task); err != nil {
			logger.SysError("failed to cache task: " + err.Error())
		}
		return task, nil
	}
	var task Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, err
	}
	return &task, nil
}
