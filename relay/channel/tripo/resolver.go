package tripo

import (
	"context"
	"hash/fnv"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

// Resolver turns a successful task into displayable asset candidates, most
// preferred first: primary mesh, secondary mesh, mesh URLs derived from the
// rendered image, the rendered image itself, and finally a procedural
// placeholder. The placeholder tier needs no I/O, so resolution as a whole
// cannot fail.
type Resolver struct {
	client StatusClient
	// The upstream may report success before output URLs are populated.
	// outputWaitRetries bounds how many refreshes we do before conceding
	// to a degraded tier.
	outputWaitRetries int
	outputWaitDelay   time.Duration
}

func NewResolver(client StatusClient) *Resolver {
	return &Resolver{
		client:            client,
		outputWaitRetries: config.OutputWaitRetries,
		outputWaitDelay:   config.PollInterval,
	}
}

// NewStaticResolver resolves without refreshing empty outputs. Used by
// tests and by callers that already waited.
func NewStaticResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the single best asset for a successful task.
func (r *Resolver) Resolve(ctx context.Context, task *relaymodel.GenerationTask) relaymodel.ResolvedAsset {
	return r.Cascade(ctx, task)[0]
}

// Cascade returns every applicable tier in strict priority order. Callers
// walk the list and fall through to the next entry when fetching or parsing
// an earlier one fails; the final entry is always a placeholder.
func (r *Resolver) Cascade(ctx context.Context, task *relaymodel.GenerationTask) []relaymodel.ResolvedAsset {
	task = r.awaitOutput(ctx, task)

	var assets []relaymodel.ResolvedAsset
	if u := task.Output.PrimaryMeshUrl; u != "" {
		assets = append(assets, meshAsset(u))
	}
	if u := task.Output.SecondaryMeshUrl; u != "" {
		assets = append(assets, meshAsset(u))
	}
	if u := task.Output.RenderedImageUrl; u != "" {
		for _, derived := range DeriveMeshURLs(u) {
			assets = append(assets, meshAsset(derived))
		}
		assets = append(assets, relaymodel.ResolvedAsset{
			Kind: relaymodel.AssetKindImage2D,
			URL:  u,
		})
	}
	assets = append(assets, relaymodel.ResolvedAsset{
		Kind:            relaymodel.AssetKindPlaceholder,
		PlaceholderSeed: PlaceholderSeed(task.TaskId),
	})
	return assets
}

// awaitOutput re-reads the task a bounded number of times while its output
// is still empty. Eventual-consistency lag on the upstream side, observed
// in production.
func (r *Resolver) awaitOutput(ctx context.Context, task *relaymodel.GenerationTask) *relaymodel.GenerationTask {
	if !task.Output.Empty() || r.client == nil {
		return task
	}
	for retry := 0; retry < r.outputWaitRetries; retry++ {
		if !sleepCtx(ctx, r.outputWaitDelay) {
			return task
		}
		refreshed, errw := r.client.GetTaskStatus(ctx, task.TaskId)
		if errw != nil {
			logger.Warnf(ctx, "output wait refresh failed for task %s: %s", task.TaskId, errw.Message)
			continue
		}
		if !refreshed.Output.Empty() {
			return refreshed
		}
	}
	logger.Warnf(ctx, "task %s reported success but never produced output, conceding to degraded tiers", task.TaskId)
	return task
}

func meshAsset(u string) relaymodel.ResolvedAsset {
	format, ok := relaymodel.MeshFormatFromURL(u)
	if !ok {
		// Unrecognized extension: the upstream serves GLB by default.
		format = relaymodel.MeshFormatGLB
	}
	return relaymodel.ResolvedAsset{
		Kind:   relaymodel.AssetKindMesh3D,
		Format: format,
		URL:    u,
	}
}

// DeriveMeshURLs builds candidate mesh URLs next to a rendered image by
// substituting the conventional mesh filename, .stl first, then .glb. The
// candidates are speculative; the geometry loader discovers whether they
// exist, and the caller falls through when they do not.
func DeriveMeshURLs(imageURL string) []string {
	parsed, err := url.Parse(imageURL)
	if err != nil || parsed.Path == "" {
		return nil
	}
	dir := path.Dir(parsed.Path)
	var derived []string
	for _, name := range []string{"model.stl", "model.glb"} {
		candidate := *parsed
		candidate.Path = path.Join(dir, name)
		candidate.RawQuery = ""
		derived = append(derived, candidate.String())
	}
	return derived
}

// PlaceholderSeed derives a stable seed from the task id so the same task
// always yields the same placeholder shape.
func PlaceholderSeed(taskId string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.TrimSpace(taskId)))
	return h.Sum32()
}
