package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relaymodel "github.com/caratlab/jewel-studio/relay/model"
)

func testAdaptor(server *httptest.Server) *Adaptor {
	return &Adaptor{
		BaseURL: server.URL,
		APIKey:  "sk-ant-test",
		Model:   defaultModel,
		Client:  server.Client(),
	}
}

func textResponse(text string) string {
	resp := Response{Content: []ContentBlock{{Type: "text", Text: text}}}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestDescribeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		content := req.Messages[0].Content
		require.Len(t, content, 2)
		assert.Equal(t, "image", content[0].Type)
		assert.Equal(t, "image/jpeg", content[0].Source.MediaType)
		assert.Equal(t, "text", content[1].Type)

		w.Write([]byte(textResponse("A golden retriever, adult, facing the camera.")))
	}))
	defer server.Close()

	text, apiErr := testAdaptor(server).DescribeImage(context.Background(), []byte("jpeg bytes"), "image/jpeg")
	require.Nil(t, apiErr)
	assert.Equal(t, "A golden retriever, adult, facing the camera.", text)
}

func TestDescribeImageMissingKey(t *testing.T) {
	a := &Adaptor{BaseURL: "http://unused", Client: http.DefaultClient}
	_, apiErr := a.DescribeImage(context.Background(), []byte("x"), "image/png")
	require.NotNil(t, apiErr)
	assert.Equal(t, relaymodel.ErrTypeUpstreamAuth, apiErr.Type)
}

func TestStylizeDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse("Flat circle with a golden retriever portrait")))
	}))
	defer server.Close()

	text, apiErr := testAdaptor(server).StylizeDescription(context.Background(), "a golden retriever")
	require.Nil(t, apiErr)
	assert.Equal(t, "Flat circle with a golden retriever portrait", text)
}

func TestStylizeDescriptionUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	_, apiErr := testAdaptor(server).StylizeDescription(context.Background(), "a dog")
	require.NotNil(t, apiErr)
	assert.Equal(t, relaymodel.ErrTypeUpstreamRateLimited, apiErr.Type)
	assert.Equal(t, "slow down", apiErr.Message)
}

func TestEnforceStylePrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "already compliant",
			in:   "Flat circle with a dog portrait",
			want: "Flat circle with a dog portrait",
		},
		{
			name: "conversational lead-in",
			in:   "Sure, here's the result: Flat circle with a dog portrait",
			want: "Flat circle with a dog portrait",
		},
		{
			name: "quoted reply",
			in:   "\"Flat circle with an elderly man's profile\"",
			want: "Flat circle with an elderly man's profile",
		},
		{
			name: "missing prefix entirely",
			in:   "A dog portrait in profile",
			want: "Flat circle with a dog portrait in profile",
		},
		{
			name: "empty after stripping",
			in:   "Here's",
			want: "Flat circle with simple design",
		},
		{
			name: "multibyte leading rune",
			in:   "Élégant profil de chien",
			want: "Flat circle with élégant profil de chien",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, enforceStylePrefix(tt.in))
		})
	}
}
