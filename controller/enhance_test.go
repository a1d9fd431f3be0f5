package controller

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	stdimage "image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/relay/channel/anthropic"
	"github.com/caratlab/jewel-studio/relay/channel/openai"
	"github.com/caratlab/jewel-studio/service"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngPayload returns bytes that sniff as image/png, padded to size.
func pngPayload(size int) []byte {
	data := make([]byte, size)
	copy(data, pngMagic)
	return data
}

// encodePNG returns a fully decodable PNG, for the paths that insist on one.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func setupEnhanceRouter() *gin.Engine {
	// Adaptors without keys: the cascade degrades to the default
	// description without any network calls.
	enhancer := &service.Enhancer{
		Editor: &openai.Adaptor{},
		Vision: &anthropic.Adaptor{},
	}
	Setup(nil, enhancer, nil)

	router := gin.New()
	router.POST("/api/enhance", EnhanceImage)
	router.POST("/api/vision-to-prompt", VisionToPrompt)
	return router
}

func multipartBody(t *testing.T, field, filename string, data []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range extra {
		writer.WriteField(k, v)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func postMultipart(router *gin.Engine, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)
	return w
}

// Exactly at the limit passes, one byte over is rejected.
func TestEnhanceUploadSizeBoundary(t *testing.T) {
	original := config.UploadMaxBytes
	config.UploadMaxBytes = 1024
	defer func() { config.UploadMaxBytes = original }()

	router := setupEnhanceRouter()

	body, contentType := multipartBody(t, "file", "at-limit.png", pngPayload(1024), map[string]string{"prompt": "ring"})
	w := postMultipart(router, "/api/enhance", body, contentType)
	assert.Equal(t, http.StatusOK, w.Code)

	body, contentType = multipartBody(t, "file", "over-limit.png", pngPayload(1025), map[string]string{"prompt": "ring"})
	w = postMultipart(router, "/api/enhance", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnhanceRejectsUnsupportedType(t *testing.T) {
	router := setupEnhanceRouter()

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("plain text, not an image"), nil)
	w := postMultipart(router, "/api/enhance", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "unsupported file type")
}

func TestEnhanceMissingFile(t *testing.T) {
	router := setupEnhanceRouter()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("prompt", "ring")
	require.NoError(t, writer.Close())

	w := postMultipart(router, "/api/enhance", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// With no upstream keys configured the cascade lands on the hard-coded
// default description, still HTTP 200.
func TestEnhanceDegradesToTextOnly(t *testing.T) {
	router := setupEnhanceRouter()

	body, contentType := multipartBody(t, "file", "photo.png", pngPayload(64), map[string]string{"prompt": "ring"})
	w := postMultipart(router, "/api/enhance", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		UseTextOnly     bool   `json:"useTextOnly"`
		TextDescription string `json:"textDescription"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UseTextOnly)
	assert.Equal(t, "Flat circle with simple design", resp.TextDescription)
}

// formBody builds a multipart body with no file part, fields only.
func formBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

// imageUrl stands in for the file upload: the image is fetched, sniffed and
// pushed through the same cascade.
func TestEnhanceFromImageUrl(t *testing.T) {
	pngBytes := encodePNG(t, 2, 2)
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer imageServer.Close()

	router := setupEnhanceRouter()
	body, contentType := formBody(t, map[string]string{"imageUrl": imageServer.URL + "/photo.png", "prompt": "ring"})
	w := postMultipart(router, "/api/enhance", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		UseTextOnly bool `json:"useTextOnly"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UseTextOnly)
}

// A data URL needs no network round trip at all.
func TestVisionToPromptFromDataUrl(t *testing.T) {
	dataUrl := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 1, 1))

	router := setupEnhanceRouter()
	body, contentType := formBody(t, map[string]string{"imageUrl": dataUrl})
	w := postMultipart(router, "/api/vision-to-prompt", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.DefaultDescription, resp["enhancedPrompt"])
}

// A URL serving something that is not an image is rejected up front.
func TestEnhanceFromImageUrlRejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	router := setupEnhanceRouter()
	body, contentType := formBody(t, map[string]string{"imageUrl": server.URL})
	w := postMultipart(router, "/api/enhance", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "not point at an image")
}

// A rejected upload still yields a usable prompt alongside the 400.
func TestVisionToPromptInvalidUploadStillUsable(t *testing.T) {
	router := setupEnhanceRouter()

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("not an image"), nil)
	w := postMultipart(router, "/api/vision-to-prompt", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Error          string `json:"error"`
		EnhancedPrompt string `json:"enhancedPrompt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, service.DefaultDescription, resp.EnhancedPrompt)
}

func TestVisionToPromptDefaultOnMissingKeys(t *testing.T) {
	router := setupEnhanceRouter()

	body, contentType := multipartBody(t, "image", "photo.png", pngPayload(64), nil)
	w := postMultipart(router, "/api/vision-to-prompt", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.DefaultDescription, resp["enhancedPrompt"])
}
