package tripo

import (
	"testing"

	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

func TestNormalizeStatusResponse(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   relaymodel.TaskStatus
		wantProgress int
		wantPrimary  string
		wantImage    string
	}{
		{
			name:         "nested v2 shape",
			body:         `{"code":0,"data":{"task_id":"t1","status":"running","progress":55,"output":{"model":"https://cdn.example.com/t1/model.glb"}}}`,
			wantStatus:   relaymodel.TaskStatusRunning,
			wantProgress: 55,
			wantPrimary:  "https://cdn.example.com/t1/model.glb",
		},
		{
			name:         "nested prefers pbr model",
			body:         `{"code":0,"data":{"task_id":"t1","status":"success","progress":100,"output":{"model":"https://x/m.glb","pbr_model":"https://x/pbr.glb"}}}`,
			wantStatus:   relaymodel.TaskStatusSuccess,
			wantProgress: 100,
			wantPrimary:  "https://x/pbr.glb",
		},
		{
			name:         "flat shape",
			body:         `{"task_id":"t2","status":"queued","progress":0,"model_url":"","rendered_image":"https://x/preview.webp"}`,
			wantStatus:   relaymodel.TaskStatusPending,
			wantProgress: 0,
			wantImage:    "https://x/preview.webp",
		},
		{
			name:         "legacy shape",
			body:         `{"id":"t3","state":"finished","percent":100,"result":{"model":{"url":"https://x/mesh.stl"},"preview":{"url":"https://x/p.png"}}}`,
			wantStatus:   relaymodel.TaskStatusSuccess,
			wantProgress: 100,
			wantPrimary:  "https://x/mesh.stl",
			wantImage:    "https://x/p.png",
		},
		{
			name:         "missing progress gets placeholder value",
			body:         `{"task_id":"t4","status":"running"}`,
			wantStatus:   relaymodel.TaskStatusRunning,
			wantProgress: SyntheticProgress,
		},
		{
			name:         "out of range progress is clamped",
			body:         `{"task_id":"t5","status":"running","progress":250}`,
			wantStatus:   relaymodel.TaskStatusRunning,
			wantProgress: 100,
		},
		{
			name:         "unknown status counts as running",
			body:         `{"task_id":"t6","status":"warming_up","progress":5}`,
			wantStatus:   relaymodel.TaskStatusRunning,
			wantProgress: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NormalizeStatusResponse([]byte(tt.body))
			if err != nil {
				t.Fatalf("NormalizeStatusResponse() error = %v", err)
			}
			if task.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", task.Status, tt.wantStatus)
			}
			if task.Progress != tt.wantProgress {
				t.Errorf("progress = %v, want %v", task.Progress, tt.wantProgress)
			}
			if task.Output.PrimaryMeshUrl != tt.wantPrimary {
				t.Errorf("primary mesh url = %v, want %v", task.Output.PrimaryMeshUrl, tt.wantPrimary)
			}
			if task.Output.RenderedImageUrl != tt.wantImage {
				t.Errorf("rendered image url = %v, want %v", task.Output.RenderedImageUrl, tt.wantImage)
			}
		})
	}
}

func TestNormalizeStatusResponseRejectsUnknownShape(t *testing.T) {
	for _, body := range []string{``, `not json`, `{"foo":"bar"}`, `[]`} {
		if _, err := NormalizeStatusResponse([]byte(body)); err == nil {
			t.Errorf("NormalizeStatusResponse(%q) expected error, got nil", body)
		}
	}
}
