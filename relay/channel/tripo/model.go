package tripo

import (
	"encoding/json"
	"fmt"

	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

type CreateTaskRequest struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"`
	// File payload for image_to_model requests.
	File *FilePayload `json:"file,omitempty"`
}

type FilePayload struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Url  string `json:"url,omitempty"`
}

// createTaskResponse covers both the enveloped and the flat creation
// response shapes.
type createTaskResponse struct {
	Code int `json:"code"`
	Data struct {
		TaskId string `json:"task_id"`
	} `json:"data"`
	TaskId string `json:"task_id"`
}

func (r *createTaskResponse) taskId() string {
	if r.Data.TaskId != "" {
		return r.Data.TaskId
	}
	return r.TaskId
}

// The upstream has shipped at least three status shapes over time: the
// enveloped v2 form (data.*), a flat form, and a legacy form with different
// field names. Call sites never branch on the raw shape; everything funnels
// through NormalizeStatusResponse.

type nestedStatusResponse struct {
	Code int `json:"code"`
	Data struct {
		TaskId   string `json:"task_id"`
		Status   string `json:"status"`
		Progress *int   `json:"progress"`
		Output   struct {
			Model         string `json:"model"`
			BaseModel     string `json:"base_model"`
			PbrModel      string `json:"pbr_model"`
			RenderedImage string `json:"rendered_image"`
		} `json:"output"`
	} `json:"data"`
}

type flatStatusResponse struct {
	TaskId        string `json:"task_id"`
	Status        string `json:"status"`
	Progress      *int   `json:"progress"`
	ModelUrl      string `json:"model_url"`
	BaseModelUrl  string `json:"base_model_url"`
	RenderedImage string `json:"rendered_image"`
}

type legacyStatusResponse struct {
	Id      string `json:"id"`
	State   string `json:"state"`
	Percent *int   `json:"percent"`
	Result  struct {
		Model struct {
			Url string `json:"url"`
		} `json:"model"`
		BaseModel struct {
			Url string `json:"url"`
		} `json:"base_model"`
		Preview struct {
			Url string `json:"url"`
		} `json:"preview"`
	} `json:"result"`
}

// NormalizeStatusResponse turns any known upstream status shape into a
// canonical GenerationTask. It returns an error only when no shape matches;
// the adaptor converts that into a synthetic running status.
func NormalizeStatusResponse(body []byte) (*relaymodel.GenerationTask, error) {
	var nested nestedStatusResponse
	if err := json.Unmarshal(body, &nested); err == nil && nested.Data.TaskId != "" {
		task := &relaymodel.GenerationTask{
			TaskId: nested.Data.TaskId,
			Status: relaymodel.NormalizeTaskStatus(nested.Data.Status),
			Output: relaymodel.TaskOutput{
				PrimaryMeshUrl:   firstNonEmpty(nested.Data.Output.PbrModel, nested.Data.Output.Model),
				SecondaryMeshUrl: nested.Data.Output.BaseModel,
				RenderedImageUrl: nested.Data.Output.RenderedImage,
			},
		}
		task.Progress = normalizeProgress(nested.Data.Progress, task.Status)
		return task, nil
	}

	var flat flatStatusResponse
	if err := json.Unmarshal(body, &flat); err == nil && flat.TaskId != "" && flat.Status != "" {
		task := &relaymodel.GenerationTask{
			TaskId: flat.TaskId,
			Status: relaymodel.NormalizeTaskStatus(flat.Status),
			Output: relaymodel.TaskOutput{
				PrimaryMeshUrl:   flat.ModelUrl,
				SecondaryMeshUrl: flat.BaseModelUrl,
				RenderedImageUrl: flat.RenderedImage,
			},
		}
		task.Progress = normalizeProgress(flat.Progress, task.Status)
		return task, nil
	}

	var legacy legacyStatusResponse
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.Id != "" && legacy.State != "" {
		task := &relaymodel.GenerationTask{
			TaskId: legacy.Id,
			Status: relaymodel.NormalizeTaskStatus(legacy.State),
			Output: relaymodel.TaskOutput{
				PrimaryMeshUrl:   legacy.Result.Model.Url,
				SecondaryMeshUrl: legacy.Result.BaseModel.Url,
				RenderedImageUrl: legacy.Result.Preview.Url,
			},
		}
		task.Progress = normalizeProgress(legacy.Percent, task.Status)
		return task, nil
	}

	return nil, fmt.Errorf("unrecognized status response shape: %s", truncate(string(body), 200))
}

func normalizeProgress(p *int, status relaymodel.TaskStatus) int {
	if status == relaymodel.TaskStatusSuccess {
		return 100
	}
	if p == nil {
		return SyntheticProgress
	}
	if *p < 0 {
		return 0
	}
	if *p > 100 {
		return 100
	}
	return *p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
