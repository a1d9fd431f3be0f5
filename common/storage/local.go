package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/logger"
)

// LocalProvider writes images to a directory on disk; they are served back
// by the asset controller under /api/generated/:id.
type LocalProvider struct {
	dir string
}

func NewLocalProvider(dir string) (*LocalProvider, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", absDir, err)
	}
	logger.SysLog(fmt.Sprintf("local image storage enabled at %s", absDir))
	return &LocalProvider{dir: absDir}, nil
}

func (p *LocalProvider) Save(ctx context.Context, id string, data []byte, mimeType string) (string, error) {
	filename := id + extensionFromMimeType(mimeType)
	if err := os.WriteFile(filepath.Join(p.dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return fmt.Sprintf("%s/api/generated/%s", config.ServerAddress, id), nil
}

func (p *LocalProvider) Load(ctx context.Context, id string) ([]byte, string, error) {
	for _, ext := range knownExtensions {
		data, err := os.ReadFile(filepath.Join(p.dir, id+ext))
		if err == nil {
			return data, mimeTypeFromExtension(ext), nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	return nil, "", os.ErrNotExist
}
