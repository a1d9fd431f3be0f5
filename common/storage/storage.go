package storage

import (
	"context"
	"path"

	"github.com/caratlab/jewel-studio/common/config"
)

// Provider stores generated/enhanced images and returns a URL the browser
// can fetch them from. Resolved once at startup; handlers never consult the
// environment themselves.
type Provider interface {
	Save(ctx context.Context, id string, data []byte, mimeType string) (url string, err error)
	Load(ctx context.Context, id string) (data []byte, mimeType string, err error)
}

// Setup picks R2 when configured, local disk otherwise.
func Setup() (Provider, error) {
	if config.CfR2StoreEnabled {
		return NewR2Provider()
	}
	return NewLocalProvider(config.LocalStorageDir)
}

var knownExtensions = []string{".jpg", ".png", ".webp", ".gif"}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func mimeTypeFromExtension(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func objectKey(id string, mimeType string) string {
	return path.Join("generated-images", id+extensionFromMimeType(mimeType))
}
