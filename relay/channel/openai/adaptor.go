package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/caratlab/jewel-studio/common/config"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
	"github.com/caratlab/jewel-studio/relay/util"
)

type Adaptor struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	// MaxRetries bounds re-attempts after HTTP 429. All other failures
	// propagate immediately.
	MaxRetries     int
	RetryBaseDelay time.Duration
}

func NewAdaptor() *Adaptor {
	return &Adaptor{
		BaseURL:        config.OpenAIBaseURL,
		APIKey:         config.OpenAIApiKey,
		Client:         util.GetHttpClient(),
		MaxRetries:     config.EnhanceMaxRetries,
		RetryBaseDelay: config.EnhanceRetryBaseDelay,
	}
}

func (a *Adaptor) HasKey() bool {
	return a.APIKey != ""
}

// EditImage runs one image-to-image enhancement with exponential backoff on
// rate limits. The multipart body is rebuilt per attempt.
func (a *Adaptor) EditImage(ctx context.Context, request *ImageEditRequest) (*ImageEditResult, *relaymodel.ErrorWithStatusCode) {
	if !a.HasKey() {
		return nil, relaymodel.NewError(http.StatusUnauthorized, relaymodel.ErrTypeUpstreamAuth, "openai api key not configured")
	}

	retries := 0
	for {
		result, apiErr := a.editOnce(ctx, request)
		if apiErr == nil {
			result.Retries = retries
			return result, nil
		}
		if !apiErr.IsRetryable() || retries >= a.MaxRetries {
			return nil, apiErr
		}

		delay := a.RetryBaseDelay << retries
		retries++
		select {
		case <-ctx.Done():
			return nil, relaymodel.NewError(499, relaymodel.ErrTypeCanceled, ctx.Err().Error())
		case <-time.After(delay):
		}
	}
}

func (a *Adaptor) editOnce(ctx context.Context, request *ImageEditRequest) (*ImageEditResult, *relaymodel.ErrorWithStatusCode) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	model := request.Model
	if model == "" {
		model = defaultModel
	}
	size := request.Size
	if size == "" {
		size = defaultSize
	}
	name := request.ImageName
	if name == "" {
		name = "image.png"
	}

	part, err := writer.CreateFormFile("image", name)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeParse, err.Error())
	}
	if _, err := part.Write(request.Image); err != nil {
		return nil, relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeParse, err.Error())
	}
	writer.WriteField("prompt", request.Prompt)
	writer.WriteField("model", model)
	writer.WriteField("size", size)
	if err := writer.Close(); err != nil {
		return nil, relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeParse, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+imageEditPath, &body)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeTransport, err.Error())
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		message := http.StatusText(resp.StatusCode)
		var parsed errorResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		errType := relaymodel.ErrTypeUpstream
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			errType = relaymodel.ErrTypeUpstreamRateLimited
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			errType = relaymodel.ErrTypeUpstreamAuth
		}
		return nil, relaymodel.NewError(resp.StatusCode, errType, message)
	}

	var parsed imageEditResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed, err.Error())
	}
	if len(parsed.Data) == 0 {
		return nil, relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed, "image edit response has no data")
	}

	return &ImageEditResult{
		URL:     parsed.Data[0].Url,
		B64JSON: parsed.Data[0].B64Json,
	}, nil
}
