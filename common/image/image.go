package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
)

// Regex to match data URL pattern
var dataURLPattern = regexp.MustCompile(`data:image/([^;]+);base64,(.*)`)

// AllowedUploadTypes are the content types accepted by the enhancement
// endpoints. Everything else is rejected as invalid input.
var AllowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SniffContentType detects the content type from the first bytes of data.
func SniffContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	return contentType
}

// ValidateUpload checks type and size of an uploaded image. maxBytes <= 0
// disables the size check.
func ValidateUpload(data []byte, maxBytes int64) error {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return fmt.Errorf("file too large: %d bytes, limit is %d bytes", len(data), maxBytes)
	}
	contentType := SniffContentType(data)
	if !AllowedUploadTypes[contentType] {
		return fmt.Errorf("unsupported file type: %s, only JPEG, PNG and WebP are accepted", contentType)
	}
	return nil
}

// remoteImageReadLimit bounds how much of a remote body GetImageFromUrl
// will buffer; anything past it is cut off and fails the size check later.
const remoteImageReadLimit = 32 << 20

// GetImageFromUrl resolves an image reference to a mime type and base64
// payload. Data URLs are decoded in place; anything else is fetched and
// sniffed, trusting the bytes over whatever Content-Type the server sent.
func GetImageFromUrl(url string) (mimeType string, data string, err error) {
	matches := dataURLPattern.FindStringSubmatch(url)
	if len(matches) == 3 {
		return "image/" + matches[1], matches[2], nil
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("image fetch failed: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, remoteImageReadLimit))
	if err != nil {
		return "", "", err
	}

	mimeType = SniffContentType(body)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", fmt.Errorf("url does not point at an image: got %s", mimeType)
	}
	return mimeType, base64.StdEncoding.EncodeToString(body), nil
}

var readerPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Reader{}
	},
}

// GetImageSizeFromBase64 decodes a base64 image payload just far enough to
// read its dimensions. A data URL prefix, if present, is stripped first.
func GetImageSizeFromBase64(encoded string) (width int, height int, err error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, 0, err
	}

	reader := readerPool.Get().(*bytes.Reader)
	defer readerPool.Put(reader)
	reader.Reset(decoded)

	img, _, err := image.DecodeConfig(reader)
	if err != nil {
		return 0, 0, err
	}
	return img.Width, img.Height, nil
}
