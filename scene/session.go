package scene

import (
	"fmt"
	"io"
	"sync"

	"github.com/caratlab/jewel-studio/geometry"
)

// SizeCategory selects a uniform display scale for the current model.
type SizeCategory string

const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
)

var sizeMultipliers = map[SizeCategory]float64{
	SizeSmall:  0.7,
	SizeMedium: 1.0,
	SizeLarge:  1.4,
}

// ErrStaleModel is returned when a finished load loses the race against a
// newer one and its result is discarded.
var ErrStaleModel = fmt.Errorf("model load superseded by a newer request")

// Session owns the live scene and the single displayed model node. All scene
// mutation goes through the session; nothing else touches nodes directly.
type Session struct {
	mu sync.Mutex

	model      *Node
	material   *MaterialPreset
	size       SizeCategory
	rotation   geometry.Vector3
	autoRotate bool

	// generation increases on every BeginLoad; SetModel commits only when
	// its token still matches, so a slow stale load cannot clobber a newer
	// model mid-assembly.
	generation uint64
}

func NewSession() *Session {
	return &Session{
		material: MaterialGold,
		size:     SizeMedium,
	}
}

// BeginLoad registers a new in-flight model load and returns the token the
// eventual SetModel must present. Any load started earlier becomes stale.
func (s *Session) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// SetModel swaps in a freshly built node, disposing the previous one first.
// A stale token means a newer load has started since; the incoming node is
// disposed and the live scene is left untouched.
func (s *Session) SetModel(node *Node, token uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.generation {
		node.Dispose()
		return ErrStaleModel
	}

	if s.model != nil {
		s.model.Dispose()
	}
	node.ApplyMaterial(s.material)
	s.model = node
	return nil
}

// Model returns the currently displayed node, or nil.
func (s *Session) Model() *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetMaterial switches the shared preset on every metal part of the current
// model. Gemstone-tagged parts keep their material.
func (s *Session) SetMaterial(name string) error {
	preset, err := MaterialByName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.material = preset
	if s.model != nil {
		s.model.ApplyMaterial(preset)
	}
	return nil
}

func (s *Session) Material() *MaterialPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.material
}

// SetScale selects the display size category.
func (s *Session) SetScale(size SizeCategory) error {
	if _, ok := sizeMultipliers[size]; !ok {
		return fmt.Errorf("unknown size category: %s", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
	return nil
}

// ScaleMultiplier reports the uniform multiplier for the selected size.
func (s *Session) ScaleMultiplier() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sizeMultipliers[s.size]
}

func (s *Session) Rotate(dx, dy, dz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.X += dx
	s.rotation.Y += dy
	s.rotation.Z += dz
}

func (s *Session) ResetRotation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation = geometry.Vector3{}
}

func (s *Session) Rotation() geometry.Vector3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation
}

func (s *Session) SetAutoRotate(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRotate = enabled
}

func (s *Session) AutoRotate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRotate
}

// Export serializes the current model to w. The live scene is never touched:
// the graph is cloned, flattened and scaled off-scene. The clone happens
// under the session lock so a concurrent SetModel cannot dispose the graph
// mid-copy; only the detached mesh is serialized unlocked. format is "stl",
// "stl-ascii" or "obj".
func (s *Session) Export(w io.Writer, format string) error {
	s.mu.Lock()
	if s.model == nil || s.model.Disposed() {
		s.mu.Unlock()
		return fmt.Errorf("no model to export")
	}
	mesh := s.model.Clone().MergedMesh()
	multiplier := sizeMultipliers[s.size]
	s.mu.Unlock()

	if mesh.TriangleCount() == 0 {
		return fmt.Errorf("model has no geometry to export")
	}
	if multiplier != 1.0 {
		mesh.Scale(multiplier)
	}

	switch format {
	case "stl":
		return geometry.WriteBinarySTL(w, mesh)
	case "stl-ascii":
		return geometry.WriteASCIISTL(w, mesh)
	case "obj":
		return geometry.WriteOBJ(w, mesh)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// Dispose tears down the session and the displayed model. Shared material
// presets survive; only per-mesh resources are released.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		s.model.Dispose()
		s.model = nil
	}
	s.generation++
}
