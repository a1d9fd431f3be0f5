package geometry

import "math"

const degenerateEpsilon = 1e-9

// NormalizedGeometry records what normalization did to a mesh.
type NormalizedGeometry struct {
	// BoundingBoxCenter is the centroid of the mesh before centering.
	BoundingBoxCenter Vector3 `json:"bounding_box_center"`
	// MaxDimension is the largest bounding-box edge before scaling.
	MaxDimension float64 `json:"max_dimension"`
	// AppliedScale = targetSize / MaxDimension.
	AppliedScale float64 `json:"applied_scale"`
	TargetSize   float64 `json:"target_size"`
}

// Normalize centers the mesh on its bounding-box centroid and uniformly
// rescales it so its largest dimension equals targetSize. The mesh is
// mutated in place; the returned metadata describes the transform.
// Normalizing the same input twice yields identical results, and
// re-normalizing an already normalized mesh is a no-op up to float error.
func Normalize(m *Mesh, targetSize float64) (*NormalizedGeometry, error) {
	bbox := m.BoundingBox()
	if bbox.IsEmpty() {
		return nil, &DegenerateGeometryError{Name: m.Name}
	}

	maxDim := bbox.MaxDimension()
	if maxDim < degenerateEpsilon {
		return nil, &DegenerateGeometryError{Name: m.Name}
	}

	center := bbox.Center()
	m.Translate(center.Scale(-1))

	scale := targetSize / maxDim
	m.Scale(scale)

	return &NormalizedGeometry{
		BoundingBoxCenter: center,
		MaxDimension:      maxDim,
		AppliedScale:      scale,
		TargetSize:        targetSize,
	}, nil
}

// IsNormalized reports whether the mesh already sits centered in the target
// envelope, within tolerance.
func IsNormalized(m *Mesh, targetSize float64, tolerance float64) bool {
	bbox := m.BoundingBox()
	if bbox.IsEmpty() {
		return false
	}
	if math.Abs(bbox.MaxDimension()-targetSize) > tolerance {
		return false
	}
	c := bbox.Center()
	return math.Abs(c.X) <= tolerance && math.Abs(c.Y) <= tolerance && math.Abs(c.Z) <= tolerance
}
