package service

import (
	"context"
	"net/http"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/geometry"
	"github.com/caratlab/jewel-studio/relay/channel/tripo"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

// GenerationResult is a displayable asset: either a normalized mesh (real or
// placeholder) or a 2D image to show in place of one.
type GenerationResult struct {
	TaskId   string
	Asset    relaymodel.ResolvedAsset
	Mesh     *geometry.Mesh
	Geometry *geometry.NormalizedGeometry
	// TiersSkipped counts cascade tiers that were tried and found unusable
	// before this asset.
	TiersSkipped int
}

// Generator drives one generation flow end to end: create the task, poll to
// a terminal state, resolve the asset cascade and load the first usable
// tier. Only input validation and hard polling failures surface as errors;
// asset troubles degrade tier by tier down to the placeholder.
type Generator struct {
	Adaptor  *tripo.Adaptor
	Resolver *tripo.Resolver
	Loader   *geometry.Loader

	PollerOptions tripo.PollerOptions
}

func NewGenerator() *Generator {
	adaptor := tripo.NewAdaptor()
	adaptor.Client = upstreamClient(adaptor.Client)
	return &Generator{
		Adaptor:  adaptor,
		Resolver: tripo.NewResolver(adaptor),
		Loader:   geometry.NewLoader(adaptor.Client, config.GeometryTargetSize),
	}
}

// CreateTask submits a text-to-model task and returns its id.
func (g *Generator) CreateTask(ctx context.Context, prompt string) (string, *relaymodel.ErrorWithStatusCode) {
	if prompt == "" {
		return "", relaymodel.NewError(http.StatusBadRequest, relaymodel.ErrTypeInvalidInput, "prompt is required")
	}
	return g.Adaptor.CreateTask(ctx, &tripo.CreateTaskRequest{
		Type:   tripo.RequestTypeTextToModel,
		Prompt: prompt,
	})
}

// Generate runs the full flow for an already created task.
func (g *Generator) Generate(ctx context.Context, taskId string, onProgress func(int)) (*GenerationResult, *relaymodel.ErrorWithStatusCode) {
	opts := g.PollerOptions
	opts.OnProgress = onProgress
	poller := tripo.NewPoller(g.Adaptor, opts)

	task, apiErr := poller.Run(ctx, taskId)
	if apiErr != nil {
		return nil, apiErr
	}
	return g.Materialize(ctx, task), nil
}

// Materialize walks the resolver cascade and loads the first usable tier.
// The cascade always ends in a placeholder, which needs no I/O, so a result
// is guaranteed.
func (g *Generator) Materialize(ctx context.Context, task *relaymodel.GenerationTask) *GenerationResult {
	assets := g.Resolver.Cascade(ctx, task)
	for i, asset := range assets {
		switch asset.Kind {
		case relaymodel.AssetKindMesh3D:
			mesh, meta, err := g.Loader.Load(ctx, asset.URL, string(asset.Format))
			if err != nil {
				logger.Warnf(ctx, "task %s: tier %d (%s) unusable: %s", task.TaskId, i, asset.URL, err.Error())
				continue
			}
			return &GenerationResult{
				TaskId:       task.TaskId,
				Asset:        asset,
				Mesh:         mesh,
				Geometry:     meta,
				TiersSkipped: i,
			}
		case relaymodel.AssetKindImage2D:
			return &GenerationResult{
				TaskId:       task.TaskId,
				Asset:        asset,
				TiersSkipped: i,
			}
		case relaymodel.AssetKindPlaceholder:
			mesh, meta := g.Loader.LoadPlaceholder(asset.PlaceholderSeed)
			return &GenerationResult{
				TaskId:       task.TaskId,
				Asset:        asset,
				Mesh:         mesh,
				Geometry:     meta,
				TiersSkipped: i,
			}
		}
	}
	// Unreachable: Cascade always appends the placeholder tier.
	mesh, meta := g.Loader.LoadPlaceholder(tripo.PlaceholderSeed(task.TaskId))
	return &GenerationResult{
		TaskId: task.TaskId,
		Asset: relaymodel.ResolvedAsset{
			Kind:            relaymodel.AssetKindPlaceholder,
			PlaceholderSeed: tripo.PlaceholderSeed(task.TaskId),
		},
		Mesh:     mesh,
		Geometry: meta,
	}
}
