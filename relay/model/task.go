package model

import "strings"

// TaskStatus is the canonical state of an upstream generation task. The
// upstream reports many spellings; normalization maps them all onto these
// four values.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
)

// IsTerminal reports whether no further polling should happen.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusSuccess || s == TaskStatusFailed
}

// NormalizeTaskStatus maps upstream status spellings onto TaskStatus.
// Unknown values count as running so the polling UI keeps going.
func NormalizeTaskStatus(raw string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "pending", "submitted", "waiting":
		return TaskStatusPending
	case "running", "processing", "in_progress", "generating":
		return TaskStatusRunning
	case "success", "succeed", "succeeded", "finished", "done", "completed":
		return TaskStatusSuccess
	case "failed", "failure", "error", "cancelled", "banned", "expired":
		return TaskStatusFailed
	default:
		return TaskStatusRunning
	}
}

// TaskOutput carries the asset URLs of a finished task. Any subset may be
// empty, even on success; the resolver deals with that.
type TaskOutput struct {
	PrimaryMeshUrl   string `json:"model_url,omitempty"`
	SecondaryMeshUrl string `json:"base_model_url,omitempty"`
	RenderedImageUrl string `json:"rendered_image,omitempty"`
}

// Empty reports whether the task produced no usable output field at all.
func (o TaskOutput) Empty() bool {
	return o.PrimaryMeshUrl == "" && o.SecondaryMeshUrl == "" && o.RenderedImageUrl == ""
}

// GenerationTask is one outstanding request to the 3D generation service.
// It is mutated only by poller reads and discarded when the flow finishes.
type GenerationTask struct {
	TaskId string     `json:"task_id"`
	Status TaskStatus `json:"status"`
	// Progress is 0..100. The upstream does not guarantee monotonicity,
	// consumers must not assume it.
	Progress int        `json:"progress"`
	Output   TaskOutput `json:"output"`
}

// Asset kinds produced by the resolver cascade, most preferred first.
type AssetKind string

const (
	AssetKindMesh3D      AssetKind = "mesh3d"
	AssetKindImage2D     AssetKind = "image2d"
	AssetKindPlaceholder AssetKind = "placeholder"
)

type MeshFormat string

const (
	MeshFormatSTL MeshFormat = "stl"
	MeshFormatGLB MeshFormat = "glb"
)

// ResolvedAsset is the outcome of the fallback cascade. URL is meaningful
// for mesh and image kinds, PlaceholderSeed only for placeholders.
type ResolvedAsset struct {
	Kind            AssetKind  `json:"kind"`
	Format          MeshFormat `json:"format,omitempty"`
	URL             string     `json:"url,omitempty"`
	PlaceholderSeed uint32     `json:"placeholder_seed,omitempty"`
}

// MeshFormatFromURL infers the mesh format from the URL path extension.
func MeshFormatFromURL(url string) (MeshFormat, bool) {
	path := url
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".stl"):
		return MeshFormatSTL, true
	case strings.HasSuffix(lower, ".glb"), strings.HasSuffix(lower, ".gltf"):
		return MeshFormatGLB, true
	default:
		return "", false
	}
}
