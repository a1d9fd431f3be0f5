package geometry

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ serializes a mesh as Wavefront OBJ. Vertices are deduplicated so
// shared corners reference the same index.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	name := m.Name
	if name == "" {
		name = "mesh"
	}
	fmt.Fprintf(bw, "o %s\n", name)

	index := make(map[Vector3]int)
	var order []Vector3
	lookup := func(v Vector3) int {
		if idx, ok := index[v]; ok {
			return idx
		}
		idx := len(order) + 1 // OBJ indices are 1-based
		index[v] = idx
		order = append(order, v)
		return idx
	}

	faces := make([][3]int, 0, len(m.Triangles))
	for _, t := range m.Triangles {
		faces = append(faces, [3]int{lookup(t.V1), lookup(t.V2), lookup(t.V3)})
	}

	for _, v := range order {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, f := range faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}
