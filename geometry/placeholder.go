package geometry

import "math"

// Placeholder shapes stand in when no real asset can be obtained. Selection
// and proportions are pure functions of the seed, so the same task always
// renders the same stand-in. Placeholder construction needs no I/O and
// cannot fail.

const (
	placeholderShapeRing = iota
	placeholderShapeBand
	placeholderShapeBead
	placeholderShapeGem
	placeholderShapeCount
)

// PlaceholderMesh builds a deterministic stand-in shape for the seed.
func PlaceholderMesh(seed uint32) *Mesh {
	// Cheap deterministic jitter in [0.8, 1.2) so placeholders for
	// different tasks do not all look identical.
	jitter := 0.8 + float64((seed>>8)%400)/1000.0

	switch seed % placeholderShapeCount {
	case placeholderShapeRing:
		return Torus("placeholder-ring", 1.0, 0.22*jitter, 48, 24)
	case placeholderShapeBand:
		return Torus("placeholder-band", 1.0, 0.38*jitter, 48, 16)
	case placeholderShapeBead:
		return UVSphere("placeholder-bead", 1.0*jitter, 32, 24)
	default:
		return Octahedron("placeholder-gem", 1.0*jitter)
	}
}

// Torus builds a torus around the Z axis.
func Torus(name string, majorRadius, tubeRadius float64, majorSegments, tubeSegments int) *Mesh {
	mesh := NewMesh(name)
	point := func(i, j int) Vector3 {
		u := 2 * math.Pi * float64(i) / float64(majorSegments)
		v := 2 * math.Pi * float64(j) / float64(tubeSegments)
		r := majorRadius + tubeRadius*math.Cos(v)
		return Vector3{
			X: r * math.Cos(u),
			Y: r * math.Sin(u),
			Z: tubeRadius * math.Sin(v),
		}
	}
	for i := 0; i < majorSegments; i++ {
		for j := 0; j < tubeSegments; j++ {
			a := point(i, j)
			b := point(i+1, j)
			c := point(i+1, j+1)
			d := point(i, j+1)
			mesh.AddTriangle(Triangle{V1: a, V2: b, V3: c})
			mesh.AddTriangle(Triangle{V1: a, V2: c, V3: d})
		}
	}
	return mesh
}

// UVSphere builds a latitude/longitude sphere.
func UVSphere(name string, radius float64, lonSegments, latSegments int) *Mesh {
	mesh := NewMesh(name)
	point := func(i, j int) Vector3 {
		theta := math.Pi * float64(j) / float64(latSegments)
		phi := 2 * math.Pi * float64(i) / float64(lonSegments)
		return Vector3{
			X: radius * math.Sin(theta) * math.Cos(phi),
			Y: radius * math.Sin(theta) * math.Sin(phi),
			Z: radius * math.Cos(theta),
		}
	}
	for i := 0; i < lonSegments; i++ {
		for j := 0; j < latSegments; j++ {
			a := point(i, j)
			b := point(i+1, j)
			c := point(i+1, j+1)
			d := point(i, j+1)
			if j > 0 {
				mesh.AddTriangle(Triangle{V1: a, V2: b, V3: c})
			}
			if j < latSegments-1 {
				mesh.AddTriangle(Triangle{V1: a, V2: c, V3: d})
			}
		}
	}
	return mesh
}

// Octahedron builds a regular octahedron, the gem stand-in.
func Octahedron(name string, radius float64) *Mesh {
	mesh := NewMesh(name)
	top := Vector3{Z: radius}
	bottom := Vector3{Z: -radius}
	equator := []Vector3{
		{X: radius}, {Y: radius}, {X: -radius}, {Y: -radius},
	}
	for i := 0; i < 4; i++ {
		a := equator[i]
		b := equator[(i+1)%4]
		mesh.AddTriangle(Triangle{V1: top, V2: a, V3: b})
		mesh.AddTriangle(Triangle{V1: bottom, V2: b, V3: a})
	}
	return mesh
}
