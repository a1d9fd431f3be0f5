package geometry

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Loader fetches mesh bytes, parses them and normalizes the result. The
// mesh is fully built and validated before anyone sees it; a partially
// initialized mesh never reaches the scene.
type Loader struct {
	Client     *http.Client
	TargetSize float64
	// MaxBytes caps the mesh download. Zero means no cap.
	MaxBytes int64
}

func NewLoader(client *http.Client, targetSize float64) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{
		Client:     client,
		TargetSize: targetSize,
		MaxBytes:   100 * 1024 * 1024,
	}
}

// Load fetches and normalizes the mesh at url. format is "stl" or "glb".
// Errors are *FetchError, *ParseError or *DegenerateGeometryError; the
// caller falls through to the next asset tier on any of them.
func (l *Loader) Load(ctx context.Context, url string, format string) (*Mesh, *NormalizedGeometry, error) {
	data, err := l.fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	mesh, err := Parse(data, format)
	if err != nil {
		return nil, nil, err
	}

	meta, err := Normalize(mesh, l.TargetSize)
	if err != nil {
		return nil, nil, err
	}
	return mesh, meta, nil
}

// Parse dispatches on the mesh format.
func Parse(data []byte, format string) (*Mesh, error) {
	switch format {
	case "stl":
		return ParseSTL(data)
	case "glb", "gltf":
		return ParseGLB(data)
	default:
		return nil, &ParseError{Format: format, Reason: "unsupported mesh format"}
	}
}

// LoadPlaceholder builds and normalizes a procedural stand-in. No I/O, so
// it cannot fail: Normalize always succeeds on the generated shapes.
func (l *Loader) LoadPlaceholder(seed uint32) (*Mesh, *NormalizedGeometry) {
	mesh := PlaceholderMesh(seed)
	meta, err := Normalize(mesh, l.TargetSize)
	if err != nil {
		// Unreachable: placeholder shapes are non-degenerate by
		// construction.
		panic(fmt.Sprintf("placeholder normalization failed: %v", err))
	}
	return mesh, meta
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	var reader io.Reader = resp.Body
	if l.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, l.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("mesh exceeds %d byte limit", l.MaxBytes)}
	}
	return data, nil
}
