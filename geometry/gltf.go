package geometry

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ParseGLB reads a GLB/glTF container and flattens every triangle primitive
// into one triangle soup. Embedded materials, textures and hierarchy are
// discarded on purpose: imported and generated assets always get the user's
// selected material preset applied by the scene layer instead of whatever
// they shipped with. Node transforms are not applied; generated assets ship
// baked geometry.
func ParseGLB(data []byte) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, &ParseError{Format: "glb", Reason: err.Error()}
	}

	mesh := NewMesh("glb")
	for mi, m := range doc.Meshes {
		for pi, p := range m.Primitives {
			if p.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := p.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, &ParseError{Format: "glb", Reason: fmt.Sprintf("mesh %d primitive %d positions: %v", mi, pi, err)}
			}

			if p.Indices == nil {
				appendUnindexed(mesh, positions)
				continue
			}
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
			if err != nil {
				return nil, &ParseError{Format: "glb", Reason: fmt.Sprintf("mesh %d primitive %d indices: %v", mi, pi, err)}
			}
			if err := appendIndexed(mesh, positions, indices); err != nil {
				return nil, &ParseError{Format: "glb", Reason: fmt.Sprintf("mesh %d primitive %d: %v", mi, pi, err)}
			}
		}
	}

	if mesh.TriangleCount() == 0 {
		return nil, &ParseError{Format: "glb", Reason: "no triangle primitives found"}
	}
	return mesh, nil
}

func appendUnindexed(mesh *Mesh, positions [][3]float32) {
	for i := 0; i+2 < len(positions); i += 3 {
		mesh.AddTriangle(Triangle{
			V1: toVector3(positions[i]),
			V2: toVector3(positions[i+1]),
			V3: toVector3(positions[i+2]),
		})
	}
}

func appendIndexed(mesh *Mesh, positions [][3]float32, indices []uint32) error {
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			return fmt.Errorf("index out of range: %d/%d/%d of %d vertices", a, b, c, len(positions))
		}
		mesh.AddTriangle(Triangle{
			V1: toVector3(positions[a]),
			V2: toVector3(positions[b]),
			V3: toVector3(positions[c]),
		})
	}
	return nil
}

func toVector3(p [3]float32) Vector3 {
	return Vector3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}
