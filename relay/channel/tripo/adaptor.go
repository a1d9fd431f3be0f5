package tripo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
	"github.com/caratlab/jewel-studio/relay/util"
)

// Adaptor is the client for the 3D generation service. GetTaskStatus never
// surfaces auth or shape problems to its caller when masking is on; it
// degrades to a synthetic running status instead.
type Adaptor struct {
	BaseURL        string
	APIKey         string
	MaskAuthErrors bool
	Client         *http.Client
}

func NewAdaptor() *Adaptor {
	return &Adaptor{
		BaseURL:        config.TripoBaseURL,
		APIKey:         config.TripoApiKey,
		MaskAuthErrors: config.MaskUpstreamAuthErrors,
		Client:         util.GetHttpClient(),
	}
}

func (a *Adaptor) GetChannelName() string {
	return ChannelName
}

func (a *Adaptor) setupRequestHeader(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if a.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.APIKey)
	}
}

// CreateTask submits a generation request and returns the upstream task id.
func (a *Adaptor) CreateTask(ctx context.Context, request *CreateTaskRequest) (string, *relaymodel.ErrorWithStatusCode) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeInvalidInput, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+createTaskPath, bytes.NewReader(body))
	if err != nil {
		return "", relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeTransport, err.Error())
	}
	a.setupRequestHeader(req)

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport,
			fmt.Sprintf("generation service unavailable: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return "", relaymodel.NewError(resp.StatusCode, relaymodel.ErrTypeInvalidInput,
			fmt.Sprintf("generation service rejected the request: %s", truncate(string(respBody), 200)))
	}
	if resp.StatusCode >= 500 {
		return "", relaymodel.NewError(resp.StatusCode, relaymodel.ErrTypeUpstream,
			fmt.Sprintf("generation service error: %s", truncate(string(respBody), 200)))
	}

	var created createTaskResponse
	if err := json.Unmarshal(respBody, &created); err != nil || created.taskId() == "" {
		return "", relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed,
			fmt.Sprintf("creation response missing task id: %s", truncate(string(respBody), 200)))
	}

	logger.Infof(ctx, "created generation task %s (type %s)", created.taskId(), request.Type)
	return created.taskId(), nil
}

// GetTaskStatus reads the current task state. Returned errors are limited to
// transport failures and 5xx so the poller can short-retry them; auth errors
// (when masked) and malformed bodies come back as a synthetic running task.
func (a *Adaptor) GetTaskStatus(ctx context.Context, taskId string) (*relaymodel.GenerationTask, *relaymodel.ErrorWithStatusCode) {
	if a.APIKey == "" {
		// No credentials configured: degrade instead of crashing the flow.
		logger.Warn(ctx, "no generation service key configured, reporting synthetic progress")
		return SyntheticRunningTask(taskId), nil
	}

	url := a.BaseURL + fmt.Sprintf(taskStatusPath, taskId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeTransport, err.Error())
	}
	a.setupRequestHeader(req)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if a.MaskAuthErrors {
			// Intentional: auth failures are converted to synthetic progress
			// so credential state never leaks to the browser and the polling
			// UI stays alive.
			logger.Warnf(ctx, "upstream auth error %d masked as running for task %s", resp.StatusCode, taskId)
			return SyntheticRunningTask(taskId), nil
		}
		return nil, relaymodel.NewError(resp.StatusCode, relaymodel.ErrTypeUpstreamAuth,
			"generation service rejected the configured credentials")
	}

	if resp.StatusCode >= 500 {
		return nil, relaymodel.NewError(resp.StatusCode, relaymodel.ErrTypeUpstream,
			fmt.Sprintf("generation service error: %s", truncate(string(respBody), 200)))
	}

	task, normErr := NormalizeStatusResponse(respBody)
	if normErr != nil {
		// Tolerated, not raised: a transient malformed response must not
		// hard-fail the UI.
		logger.Warnf(ctx, "malformed status response for task %s: %v", taskId, normErr)
		return SyntheticRunningTask(taskId), nil
	}
	return task, nil
}

// SyntheticRunningTask is the degraded status used whenever the real one is
// unavailable.
func SyntheticRunningTask(taskId string) *relaymodel.GenerationTask {
	return &relaymodel.GenerationTask{
		TaskId:   taskId,
		Status:   relaymodel.TaskStatusRunning,
		Progress: SyntheticProgress,
	}
}
