package image

import (
	"bytes"
	"encoding/base64"
	stdimage "image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestGetImageFromUrlDataUrl(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(encodePNG(t, 1, 1))

	mimeType, data, err := GetImageFromUrl("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, payload, data)
}

func TestGetImageFromUrlFetchesAndSniffs(t *testing.T) {
	pngBytes := encodePNG(t, 3, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deliberately wrong header: the bytes decide, not the server.
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngBytes)
	}))
	defer server.Close()

	mimeType, data, err := GetImageFromUrl(server.URL + "/asset")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	width, height, err := GetImageSizeFromBase64(data)
	require.NoError(t, err)
	assert.Equal(t, 3, width)
	assert.Equal(t, 2, height)
}

func TestGetImageFromUrlRejectsNonImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain text body"))
	}))
	defer server.Close()

	_, _, err := GetImageFromUrl(server.URL)
	assert.Error(t, err)
}

func TestGetImageSizeFromBase64StripsDataUrlPrefix(t *testing.T) {
	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 4, 4))

	width, height, err := GetImageSizeFromBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, 4, width)
	assert.Equal(t, 4, height)
}
