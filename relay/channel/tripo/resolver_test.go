package tripo

import (
	"context"
	"testing"

	relaymodel "github.com/caratlab/jewel-studio/relay/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successTask(output relaymodel.TaskOutput) *relaymodel.GenerationTask {
	return &relaymodel.GenerationTask{
		TaskId:   "task-1",
		Status:   relaymodel.TaskStatusSuccess,
		Progress: 100,
		Output:   output,
	}
}

func TestResolvePrimaryMesh(t *testing.T) {
	asset := NewStaticResolver().Resolve(context.Background(), successTask(relaymodel.TaskOutput{
		PrimaryMeshUrl: "https://x/mesh.glb",
	}))

	assert.Equal(t, relaymodel.AssetKindMesh3D, asset.Kind)
	assert.Equal(t, relaymodel.MeshFormatGLB, asset.Format)
	assert.Equal(t, "https://x/mesh.glb", asset.URL)
}

func TestResolveFormatInference(t *testing.T) {
	tests := []struct {
		url  string
		want relaymodel.MeshFormat
	}{
		{"https://x/mesh.stl", relaymodel.MeshFormatSTL},
		{"https://x/mesh.STL?sig=abc", relaymodel.MeshFormatSTL},
		{"https://x/mesh.gltf", relaymodel.MeshFormatGLB},
		{"https://x/mesh.bin", relaymodel.MeshFormatGLB}, // unknown defaults to glb
	}
	for _, tt := range tests {
		asset := NewStaticResolver().Resolve(context.Background(), successTask(relaymodel.TaskOutput{PrimaryMeshUrl: tt.url}))
		assert.Equal(t, tt.want, asset.Format, tt.url)
	}
}

func TestResolveSecondaryMeshWhenPrimaryMissing(t *testing.T) {
	asset := NewStaticResolver().Resolve(context.Background(), successTask(relaymodel.TaskOutput{
		SecondaryMeshUrl: "https://x/base.stl",
	}))
	assert.Equal(t, relaymodel.AssetKindMesh3D, asset.Kind)
	assert.Equal(t, "https://x/base.stl", asset.URL)
}

// A success with no output at all must still resolve, to a placeholder,
// never an error.
func TestResolveAlwaysEndsInPlaceholder(t *testing.T) {
	cascade := NewStaticResolver().Cascade(context.Background(), successTask(relaymodel.TaskOutput{}))
	require.Len(t, cascade, 1)
	assert.Equal(t, relaymodel.AssetKindPlaceholder, cascade[0].Kind)
	assert.NotZero(t, cascade[0].PlaceholderSeed)
}

func TestCascadeOrderWithRenderedImageOnly(t *testing.T) {
	cascade := NewStaticResolver().Cascade(context.Background(), successTask(relaymodel.TaskOutput{
		RenderedImageUrl: "https://cdn.example.com/task-1/preview.webp",
	}))

	// Derived .stl, derived .glb, the image plane, then the placeholder.
	require.Len(t, cascade, 4)
	assert.Equal(t, relaymodel.AssetKindMesh3D, cascade[0].Kind)
	assert.Equal(t, "https://cdn.example.com/task-1/model.stl", cascade[0].URL)
	assert.Equal(t, relaymodel.AssetKindMesh3D, cascade[1].Kind)
	assert.Equal(t, "https://cdn.example.com/task-1/model.glb", cascade[1].URL)
	assert.Equal(t, relaymodel.AssetKindImage2D, cascade[2].Kind)
	assert.Equal(t, relaymodel.AssetKindPlaceholder, cascade[3].Kind)
}

func TestCascadeFullPriorityOrder(t *testing.T) {
	cascade := NewStaticResolver().Cascade(context.Background(), successTask(relaymodel.TaskOutput{
		PrimaryMeshUrl:   "https://x/model.glb",
		SecondaryMeshUrl: "https://x/base.glb",
		RenderedImageUrl: "https://x/preview.png",
	}))

	require.GreaterOrEqual(t, len(cascade), 5)
	assert.Equal(t, "https://x/model.glb", cascade[0].URL)
	assert.Equal(t, "https://x/base.glb", cascade[1].URL)
	assert.Equal(t, relaymodel.AssetKindPlaceholder, cascade[len(cascade)-1].Kind)
}

func TestPlaceholderSeedIsStable(t *testing.T) {
	seed1 := PlaceholderSeed("task-abc")
	seed2 := PlaceholderSeed("task-abc")
	other := PlaceholderSeed("task-def")
	assert.Equal(t, seed1, seed2)
	assert.NotEqual(t, seed1, other)
}

func TestDeriveMeshURLs(t *testing.T) {
	derived := DeriveMeshURLs("https://cdn.example.com/tasks/42/preview.webp?expires=123")
	require.Len(t, derived, 2)
	assert.Equal(t, "https://cdn.example.com/tasks/42/model.stl", derived[0])
	assert.Equal(t, "https://cdn.example.com/tasks/42/model.glb", derived[1])

	assert.Nil(t, DeriveMeshURLs("://not a url"))
}

// awaitOutput does a bounded number of refreshes when the upstream reports
// success before populating output fields.
func TestResolverWaitsForLaggedOutput(t *testing.T) {
	client := &scriptedClient{observations: []observation{
		{task: successTask(relaymodel.TaskOutput{})},
		{task: successTask(relaymodel.TaskOutput{PrimaryMeshUrl: "https://x/model.glb"})},
	}}
	resolver := &Resolver{client: client, outputWaitRetries: 3, outputWaitDelay: 1}

	asset := resolver.Resolve(context.Background(), successTask(relaymodel.TaskOutput{}))
	assert.Equal(t, relaymodel.AssetKindMesh3D, asset.Kind)
	assert.Equal(t, "https://x/model.glb", asset.URL)
}

func TestResolverConcedesAfterWaitBudget(t *testing.T) {
	client := &scriptedClient{observations: []observation{
		{task: successTask(relaymodel.TaskOutput{})},
	}}
	resolver := &Resolver{client: client, outputWaitRetries: 2, outputWaitDelay: 1}

	asset := resolver.Resolve(context.Background(), successTask(relaymodel.TaskOutput{}))
	assert.Equal(t, relaymodel.AssetKindPlaceholder, asset.Kind)
	assert.Equal(t, 2, client.calls)
}
