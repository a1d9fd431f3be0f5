package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caratlab/jewel-studio/relay/channel/openai"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

type fakeEditor struct {
	hasKey bool
	result *openai.ImageEditResult
	err    *relaymodel.ErrorWithStatusCode
	calls  int
}

func (f *fakeEditor) HasKey() bool { return f.hasKey }

func (f *fakeEditor) EditImage(ctx context.Context, request *openai.ImageEditRequest) (*openai.ImageEditResult, *relaymodel.ErrorWithStatusCode) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeVision struct {
	hasKey      bool
	description string
	describeErr *relaymodel.ErrorWithStatusCode
	stylized    string
	stylizeErr  *relaymodel.ErrorWithStatusCode
}

func (f *fakeVision) HasKey() bool { return f.hasKey }

func (f *fakeVision) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, *relaymodel.ErrorWithStatusCode) {
	if f.describeErr != nil {
		return "", f.describeErr
	}
	return f.description, nil
}

func (f *fakeVision) StylizeDescription(ctx context.Context, description string) (string, *relaymodel.ErrorWithStatusCode) {
	if f.stylizeErr != nil {
		return "", f.stylizeErr
	}
	return f.stylized, nil
}

func TestEnhancePrimarySuccess(t *testing.T) {
	editor := &fakeEditor{
		hasKey: true,
		result: &openai.ImageEditResult{URL: "https://cdn.example.com/out.png", Retries: 2},
	}
	e := &Enhancer{Editor: editor, Vision: &fakeVision{hasKey: true}}

	result := e.Enhance(context.Background(), []byte("img"), "image/png", "gold ring")
	assert.Equal(t, EnhanceStateCompleted, result.State)
	assert.False(t, result.UseTextOnly)
	assert.Equal(t, "https://cdn.example.com/out.png", result.EnhancedImageUrl)
	assert.Equal(t, 2, result.Retries)
	assert.Equal(t, 1, editor.calls)
}

func TestEnhanceFallsBackToVision(t *testing.T) {
	editor := &fakeEditor{
		hasKey: true,
		err:    relaymodel.NewError(http.StatusTooManyRequests, relaymodel.ErrTypeUpstreamRateLimited, "exhausted"),
	}
	vision := &fakeVision{
		hasKey:      true,
		description: "an elderly man with a beard",
		stylized:    "Flat circle with an elderly bearded man's profile",
	}
	e := &Enhancer{Editor: editor, Vision: vision}

	result := e.Enhance(context.Background(), []byte("img"), "image/jpeg", "portrait")
	assert.True(t, result.UseTextOnly)
	assert.Equal(t, "Flat circle with an elderly bearded man's profile", result.TextDescription)
}

func TestEnhanceMissingEditorKey(t *testing.T) {
	vision := &fakeVision{hasKey: true, description: "a cat", stylized: "Flat circle with a cat silhouette"}
	e := &Enhancer{Editor: &fakeEditor{}, Vision: vision}

	result := e.Enhance(context.Background(), []byte("img"), "image/png", "cat")
	assert.True(t, result.UseTextOnly)
	assert.Equal(t, "Flat circle with a cat silhouette", result.TextDescription)
}

// Primary and fallback both failing still produces a usable result: the
// hard-coded default description, never an error.
func TestEnhanceEverythingFails(t *testing.T) {
	editor := &fakeEditor{
		hasKey: true,
		err:    relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeUpstream, "boom"),
	}
	vision := &fakeVision{
		hasKey:      true,
		describeErr: relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, "down"),
	}
	e := &Enhancer{Editor: editor, Vision: vision}

	result := e.Enhance(context.Background(), []byte("img"), "image/png", "anything")
	require.NotNil(t, result)
	assert.Equal(t, EnhanceStateCompleted, result.State)
	assert.True(t, result.UseTextOnly)
	assert.Equal(t, "Flat circle with simple design", result.TextDescription)
}

func TestEnhanceStylizeFailureUsesDefault(t *testing.T) {
	vision := &fakeVision{
		hasKey:      true,
		description: "a dog",
		stylizeErr:  relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed, "garbage"),
	}
	e := &Enhancer{Editor: &fakeEditor{}, Vision: vision}

	prompt, ok := e.DescribeImage(context.Background(), []byte("img"), "image/png")
	assert.False(t, ok)
	assert.Equal(t, DefaultDescription, prompt)
}

func TestDescribeImageSuccess(t *testing.T) {
	vision := &fakeVision{
		hasKey:      true,
		description: "a young woman smiling",
		stylized:    "Flat circle with a young woman's smiling portrait",
	}
	e := &Enhancer{Vision: vision}

	prompt, ok := e.DescribeImage(context.Background(), []byte("img"), "image/jpeg")
	assert.True(t, ok)
	assert.Equal(t, "Flat circle with a young woman's smiling portrait", prompt)
}
