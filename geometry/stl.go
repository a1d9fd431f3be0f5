package geometry

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const binarySTLHeaderSize = 84
const binarySTLTriangleSize = 50

// ParseSTL reads either binary or ASCII STL. STL is a plain triangle soup
// with no material or hierarchy information.
func ParseSTL(data []byte) (*Mesh, error) {
	if len(data) == 0 {
		return nil, &ParseError{Format: "stl", Reason: "empty input"}
	}
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// isASCIISTL sniffs the variant. A binary file may legally start with the
// bytes "solid", so the facet keyword decides.
func isASCIISTL(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return false
	}
	return bytes.Contains(head, []byte("facet"))
}

func parseBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < binarySTLHeaderSize {
		return nil, &ParseError{Format: "stl", Reason: fmt.Sprintf("file too short: %d bytes", len(data))}
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	expected := binarySTLHeaderSize + int(count)*binarySTLTriangleSize
	if len(data) < expected {
		return nil, &ParseError{Format: "stl", Reason: fmt.Sprintf("truncated body: want %d bytes, have %d", expected, len(data))}
	}

	mesh := NewMesh("stl")
	offset := binarySTLHeaderSize
	for i := uint32(0); i < count; i++ {
		// Skip the stored normal, it is recomputed from the winding order.
		v1 := readVector3(data[offset+12:])
		v2 := readVector3(data[offset+24:])
		v3 := readVector3(data[offset+36:])
		if !finiteVector(v1) || !finiteVector(v2) || !finiteVector(v3) {
			return nil, &ParseError{Format: "stl", Reason: fmt.Sprintf("non-finite vertex in triangle %d", i)}
		}
		mesh.AddTriangle(Triangle{V1: v1, V2: v2, V3: v3})
		offset += binarySTLTriangleSize
	}
	return mesh, nil
}

func readVector3(data []byte) Vector3 {
	return Vector3{
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))),
	}
}

func finiteVector(v Vector3) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

func parseASCIISTL(data []byte) (*Mesh, error) {
	mesh := NewMesh("stl")
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var vertices []Vector3
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid", "endsolid", "facet", "endfacet", "outer", "endloop":
			// structural keywords carry no vertex data
		case "vertex":
			if len(fields) != 4 {
				return nil, &ParseError{Format: "stl", Reason: fmt.Sprintf("bad vertex at line %d", lineNo)}
			}
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, &ParseError{Format: "stl", Reason: fmt.Sprintf("bad vertex at line %d: %v", lineNo, err)}
			}
			vertices = append(vertices, v)
			if len(vertices) == 3 {
				mesh.AddTriangle(Triangle{V1: vertices[0], V2: vertices[1], V3: vertices[2]})
				vertices = vertices[:0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Format: "stl", Reason: err.Error()}
	}
	if len(vertices) != 0 {
		return nil, &ParseError{Format: "stl", Reason: "dangling vertices outside a complete facet"}
	}
	if mesh.TriangleCount() == 0 {
		return nil, &ParseError{Format: "stl", Reason: "no facets found"}
	}
	return mesh, nil
}

func parseVertex(fields []string) (Vector3, error) {
	var coords [3]float64
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Vector3{}, err
		}
		coords[i] = val
	}
	return Vector3{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

// WriteBinarySTL serializes a mesh as binary STL.
func WriteBinarySTL(w io.Writer, m *Mesh) error {
	header := make([]byte, 80)
	copy(header, []byte("jewel-studio export"))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return err
	}

	buf := make([]byte, binarySTLTriangleSize)
	for _, t := range m.Triangles {
		writeVector3(buf[0:], t.Normal())
		writeVector3(buf[12:], t.V1)
		writeVector3(buf[24:], t.V2)
		writeVector3(buf[36:], t.V3)
		buf[48], buf[49] = 0, 0
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func writeVector3(data []byte, v Vector3) {
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(data[8:12], math.Float32bits(float32(v.Z)))
}

// WriteASCIISTL serializes a mesh as ASCII STL.
func WriteASCIISTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	name := m.Name
	if name == "" {
		name = "mesh"
	}
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range m.Triangles {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range []Vector3{t.V1, t.V2, t.V3} {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}
