package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/caratlab/jewel-studio/common/config"
	relaymodel "github.com/caratlab/jewel-studio/relay/model"
	"github.com/caratlab/jewel-studio/relay/util"
)

type Adaptor struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewAdaptor() *Adaptor {
	return &Adaptor{
		BaseURL: config.AnthropicBaseURL,
		APIKey:  config.AnthropicApiKey,
		Model:   defaultModel,
		Client:  util.GetHttpClient(),
	}
}

func (a *Adaptor) HasKey() bool {
	return a.APIKey != ""
}

// DescribeImage asks the vision model for a literal description of the
// image's main subject.
func (a *Adaptor) DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, *relaymodel.ErrorWithStatusCode) {
	req := &Request{
		Model:     a.Model,
		MaxTokens: defaultMaxTokens,
		Messages: []Message{{
			Role: "user",
			Content: []ContentBlock{
				{
					Type: "image",
					Source: &ImageSource{
						Type:      "base64",
						MediaType: mimeType,
						Data:      base64.StdEncoding.EncodeToString(imageData),
					},
				},
				{Type: "text", Text: describeGuidance},
			},
		}},
	}
	return a.complete(ctx, req)
}

// StylizeDescription reformats a literal description into the fixed
// template phrasing, enforcing the required prefix.
func (a *Adaptor) StylizeDescription(ctx context.Context, description string) (string, *relaymodel.ErrorWithStatusCode) {
	req := &Request{
		Model:     a.Model,
		MaxTokens: defaultMaxTokens,
		Messages: []Message{{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(stylizeTemplate, description)}},
		}},
	}
	text, apiErr := a.complete(ctx, req)
	if apiErr != nil {
		return "", apiErr
	}
	return enforceStylePrefix(text), nil
}

func (a *Adaptor) complete(ctx context.Context, request *Request) (string, *relaymodel.ErrorWithStatusCode) {
	if !a.HasKey() {
		return "", relaymodel.NewError(http.StatusUnauthorized, relaymodel.ErrTypeUpstreamAuth, "anthropic api key not configured")
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeParse, err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return "", relaymodel.NewError(http.StatusInternalServerError, relaymodel.ErrTypeTransport, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.APIKey)
	httpReq.Header.Set("anthropic-version", config.AnthropicVersion)

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return "", relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", relaymodel.NewError(http.StatusServiceUnavailable, relaymodel.ErrTypeTransport, err.Error())
	}

	var parsed Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		message := http.StatusText(resp.StatusCode)
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		errType := relaymodel.ErrTypeUpstream
		if resp.StatusCode == http.StatusTooManyRequests {
			errType = relaymodel.ErrTypeUpstreamRateLimited
		}
		return "", relaymodel.NewError(resp.StatusCode, errType, message)
	}

	text := strings.TrimSpace(parsed.Text())
	if text == "" {
		return "", relaymodel.NewError(http.StatusBadGateway, relaymodel.ErrTypeUpstreamMalformed, "empty completion")
	}
	return text, nil
}

// conversationalPrefixes are lead-ins chat models like to add despite the
// instructions. They are stripped before the style prefix check.
var conversationalPrefixes = []string{
	"sure,",
	"sure!",
	"certainly,",
	"certainly!",
	"of course,",
	"here is",
	"here's",
	"the description is:",
}

// enforceStylePrefix strips chatty lead-ins and guarantees the reply starts
// with the required template phrase.
func enforceStylePrefix(text string) string {
	cleaned := strings.TrimSpace(text)
	lower := strings.ToLower(cleaned)
	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			lower = strings.ToLower(cleaned)
		}
	}
	cleaned = strings.Trim(cleaned, "\"")

	if idx := strings.Index(strings.ToLower(cleaned), strings.ToLower(StylePrefix)); idx >= 0 {
		return StylePrefix + cleaned[idx+len(StylePrefix):]
	}
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, ":"))
	if cleaned == "" {
		return StylePrefix + " simple design"
	}
	first, size := utf8.DecodeRuneInString(cleaned)
	return StylePrefix + " " + string(unicode.ToLower(first)) + cleaned[size:]
}
