package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/caratlab/jewel-studio/common/helper"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/common/storage"
	"github.com/caratlab/jewel-studio/relay/channel/anthropic"
	"github.com/caratlab/jewel-studio/relay/channel/openai"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

// EnhanceState is the pipeline's externally visible state.
type EnhanceState string

const (
	EnhanceStateIdle      EnhanceState = "idle"
	EnhanceStateEnhancing EnhanceState = "enhancing"
	EnhanceStateCompleted EnhanceState = "completed"
	EnhanceStateError     EnhanceState = "error"
)

// DefaultDescription is the last resort of the enhancement cascade. The
// pipeline always returns something usable, never a hard failure.
const DefaultDescription = "Flat circle with simple design"

// ImageEditor is the primary image-to-image service.
type ImageEditor interface {
	HasKey() bool
	EditImage(ctx context.Context, request *openai.ImageEditRequest) (*openai.ImageEditResult, *relaymodel.ErrorWithStatusCode)
}

// VisionDescriber is the two-step text fallback.
type VisionDescriber interface {
	HasKey() bool
	DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, *relaymodel.ErrorWithStatusCode)
	StylizeDescription(ctx context.Context, description string) (string, *relaymodel.ErrorWithStatusCode)
}

// EnhanceResult is what the pipeline hands back. Exactly one of
// EnhancedImageUrl or TextDescription carries the payload.
type EnhanceResult struct {
	State            EnhanceState `json:"state"`
	EnhancedImageId  string       `json:"enhancedImageId,omitempty"`
	EnhancedImageUrl string       `json:"enhancedImageUrl,omitempty"`
	UseTextOnly      bool         `json:"useTextOnly"`
	TextDescription  string       `json:"textDescription,omitempty"`
	Retries          int          `json:"retries"`
	ProcessingTime   float64      `json:"processingTime"`
}

// Enhancer runs the enhancement cascade: primary image edit with bounded
// rate-limit retry, then the vision two-step, then the hard-coded default.
type Enhancer struct {
	Editor ImageEditor
	Vision VisionDescriber
	Store  storage.Provider
}

func NewEnhancer(store storage.Provider) *Enhancer {
	editor := openai.NewAdaptor()
	editor.Client = upstreamClient(editor.Client)
	vision := anthropic.NewAdaptor()
	vision.Client = upstreamClient(vision.Client)
	return &Enhancer{
		Editor: editor,
		Vision: vision,
		Store:  store,
	}
}

// Enhance never fails: every path out of the cascade yields a usable result.
func (e *Enhancer) Enhance(ctx context.Context, imageData []byte, mimeType string, prompt string) *EnhanceResult {
	started := time.Now()

	if e.Editor != nil && e.Editor.HasKey() {
		result, apiErr := e.Editor.EditImage(ctx, &openai.ImageEditRequest{
			Image:    imageData,
			MimeType: mimeType,
			Prompt:   prompt,
		})
		if apiErr == nil {
			url, id, err := e.storeResult(ctx, result)
			if err == nil {
				return &EnhanceResult{
					State:            EnhanceStateCompleted,
					EnhancedImageId:  id,
					EnhancedImageUrl: url,
					Retries:          result.Retries,
					ProcessingTime:   time.Since(started).Seconds(),
				}
			}
			logger.Errorf(ctx, "failed to store enhanced image: %s", err.Error())
		} else {
			logger.Warnf(ctx, "image enhancement failed (%s), falling back to text pipeline: %s", apiErr.Type, apiErr.Message)
		}
	} else {
		logger.Warn(ctx, "image editor not configured, falling back to text pipeline")
	}

	description := e.describeFallback(ctx, imageData, mimeType)
	return &EnhanceResult{
		State:           EnhanceStateCompleted,
		UseTextOnly:     true,
		TextDescription: description,
		ProcessingTime:  time.Since(started).Seconds(),
	}
}

// DescribeImage produces a generation prompt from an uploaded image. Always
// returns a usable prompt; ok reports whether it came from the vision
// service or the default.
func (e *Enhancer) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (prompt string, ok bool) {
	description := e.describeFallback(ctx, imageData, mimeType)
	return description, description != DefaultDescription
}

func (e *Enhancer) describeFallback(ctx context.Context, imageData []byte, mimeType string) string {
	if e.Vision == nil || !e.Vision.HasKey() {
		logger.Warn(ctx, "vision service not configured, using default description")
		return DefaultDescription
	}

	described, apiErr := e.Vision.DescribeImage(ctx, imageData, mimeType)
	if apiErr != nil {
		logger.Warnf(ctx, "vision describe failed (%s): %s", apiErr.Type, apiErr.Message)
		return DefaultDescription
	}

	stylized, apiErr := e.Vision.StylizeDescription(ctx, described)
	if apiErr != nil {
		logger.Warnf(ctx, "stylize failed (%s): %s", apiErr.Type, apiErr.Message)
		return DefaultDescription
	}
	return stylized
}

func (e *Enhancer) storeResult(ctx context.Context, result *openai.ImageEditResult) (url string, id string, err error) {
	id = helper.GetUUID()

	if result.B64JSON != "" && e.Store != nil {
		data, decodeErr := base64.StdEncoding.DecodeString(result.B64JSON)
		if decodeErr != nil {
			return "", "", decodeErr
		}
		url, err = e.Store.Save(ctx, id, data, "image/png")
		if err != nil {
			return "", "", err
		}
		return url, id, nil
	}
	// Upstream already hosts the result.
	return result.URL, "", nil
}
