package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caratlab/jewel-studio/geometry"
	"github.com/caratlab/jewel-studio/model"
	"github.com/caratlab/jewel-studio/relay/channel/tripo"
	"github.com/caratlab/jewel-studio/service"
)

func setupTaskRouter(upstream *httptest.Server) *gin.Engine {
	adaptor := &tripo.Adaptor{
		BaseURL:        upstream.URL,
		APIKey:         "tripo-test-key",
		MaskAuthErrors: true,
		Client:         upstream.Client(),
	}
	generator := &service.Generator{
		Adaptor:  adaptor,
		Resolver: tripo.NewResolver(adaptor),
		Loader:   geometry.NewLoader(upstream.Client(), 5.0),
	}
	Setup(generator, &service.Enhancer{}, nil)

	router := gin.New()
	router.POST("/api/task", CreateTask)
	router.GET("/api/task/status", GetTaskStatus)
	router.GET("/api/task/all", GetAllTasks)
	return router
}

// Missing taskId is the one status failure the client actually sees.
func TestGetTaskStatusMissingTaskId(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Task ID is required", body["error"])
}

// Upstream 401 never reaches the browser: HTTP 200 with a synthetic running
// status keeps the polling UI alive.
func TestGetTaskStatusMasksUpstreamAuthError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid api key"}`))
	}))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/status?taskId=task-auth", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "running", body.Status)
	assert.GreaterOrEqual(t, body.Progress, 0)
	assert.Less(t, body.Progress, 100)
}

// Upstream 500 degrades the same way; the status route never errors. An
// unrecorded task has nothing better to serve than synthetic progress.
func TestGetTaskStatusUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/status?taskId=task-500", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "running", body.Status)
}

// A task the ledger already observed keeps serving its last known status
// while the upstream is down, instead of regressing to synthetic progress.
func TestGetTaskStatusServesLastKnownRecordWhenUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	record := &model.Task{
		TaskId:   "task-cached",
		Prompt:   "pendant",
		Status:   "success",
		Progress: 100,
		ModelUrl: "https://cdn.example.com/cached.glb",
	}
	require.NoError(t, record.Insert())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/status?taskId=task-cached", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		ModelUrl string `json:"modelUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 100, body.Progress)
	assert.Equal(t, "https://cdn.example.com/cached.glb", body.ModelUrl)
}

func TestGetTaskStatusSuccessRecordsLedger(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": {"task_id": "task-ledger", "status": "success", "progress": 100, "output": {"model": "https://cdn.example.com/model.glb"}}}`))
	}))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	record := &model.Task{TaskId: "task-ledger", Prompt: "ring", Status: "pending"}
	require.NoError(t, record.Insert())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/status?taskId=task-ledger", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status   string `json:"status"`
		ModelUrl string `json:"modelUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "https://cdn.example.com/model.glb", body.ModelUrl)

	stored, err := model.GetTaskByTaskId("task-ledger")
	require.NoError(t, err)
	assert.Equal(t, "success", stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, "https://cdn.example.com/model.glb", stored.ModelUrl)
	assert.NotZero(t, stored.FinishedAt)
}

func TestGetAllTasksReportsTotal(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	record := &model.Task{TaskId: "task-listed", Prompt: "bracelet", Status: "pending"}
	require.NoError(t, record.Insert())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/task/all", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool          `json:"success"`
		Total   int64         `json:"total"`
		Data    []*model.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.GreaterOrEqual(t, body.Total, int64(1))
	assert.NotEmpty(t, body.Data)
}

func TestCreateTask(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"code": 0, "data": {"task_id": "task-created"}}`))
	}))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/task", bytes.NewBufferString(`{"prompt": "gold ring"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "task-created", body["taskId"])

	stored, err := model.GetTaskByTaskId("task-created")
	require.NoError(t, err)
	assert.Equal(t, "gold ring", stored.Prompt)
}

func TestCreateTaskMissingPrompt(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer upstream.Close()
	router := setupTaskRouter(upstream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/task", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
