package geometry

import "math"

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) Normalized() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.Scale(1 / l)
}

// Triangle is one face of a triangle-soup mesh.
type Triangle struct {
	V1, V2, V3 Vector3
}

// Normal computes the face normal from the winding order.
func (t Triangle) Normal() Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Normalized()
}

func (t Triangle) Area() float64 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Length() / 2
}

// BoundingBox is an axis-aligned box, empty until extended.
type BoundingBox struct {
	Min   Vector3
	Max   Vector3
	empty bool
}

func NewBoundingBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min:   Vector3{inf, inf, inf},
		Max:   Vector3{-inf, -inf, -inf},
		empty: true,
	}
}

func (b *BoundingBox) Extend(v Vector3) {
	b.empty = false
	b.Min.X = math.Min(b.Min.X, v.X)
	b.Min.Y = math.Min(b.Min.Y, v.Y)
	b.Min.Z = math.Min(b.Min.Z, v.Z)
	b.Max.X = math.Max(b.Max.X, v.X)
	b.Max.Y = math.Max(b.Max.Y, v.Y)
	b.Max.Z = math.Max(b.Max.Z, v.Z)
}

func (b BoundingBox) IsEmpty() bool {
	return b.empty
}

func (b BoundingBox) Center() Vector3 {
	if b.empty {
		return Vector3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b BoundingBox) Size() Vector3 {
	if b.empty {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// MaxDimension is the largest edge of the box.
func (b BoundingBox) MaxDimension() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Mesh is a named triangle soup. Materials are never part of a mesh; the
// scene layer applies the selected preset on top.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Triangles: make([]Triangle, 0),
	}
}

func (m *Mesh) AddTriangle(t Triangle) {
	m.Triangles = append(m.Triangles, t)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

func (m *Mesh) BoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	for _, t := range m.Triangles {
		bbox.Extend(t.V1)
		bbox.Extend(t.V2)
		bbox.Extend(t.V3)
	}
	return bbox
}

func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, t := range m.Triangles {
		total += t.Area()
	}
	return total
}

func (m *Mesh) Translate(offset Vector3) {
	for i := range m.Triangles {
		m.Triangles[i].V1 = m.Triangles[i].V1.Add(offset)
		m.Triangles[i].V2 = m.Triangles[i].V2.Add(offset)
		m.Triangles[i].V3 = m.Triangles[i].V3.Add(offset)
	}
}

func (m *Mesh) Scale(factor float64) {
	for i := range m.Triangles {
		m.Triangles[i].V1 = m.Triangles[i].V1.Scale(factor)
		m.Triangles[i].V2 = m.Triangles[i].V2.Scale(factor)
		m.Triangles[i].V3 = m.Triangles[i].V3.Scale(factor)
	}
}

func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Triangles: make([]Triangle, len(m.Triangles)),
	}
	copy(clone.Triangles, m.Triangles)
	return clone
}

// Merge appends another mesh's triangles.
func (m *Mesh) Merge(other *Mesh) {
	m.Triangles = append(m.Triangles, other.Triangles...)
}
