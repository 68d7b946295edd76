// Package meshtest builds small meshes and STL payloads for tests.
package meshtest

import (
	"bytes"
	"encoding/binary"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Simplici0/shiftprint/internal/mesh"
)

// Cube returns an axis-aligned cube with one corner at the origin, built from
// 12 outward-facing triangles.
func Cube(side float64) *mesh.Mesh {
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x * side, Y: y * side, Z: z * side} }

	return &mesh.Mesh{
		Name: "cube",
		Triangles: []mesh.Triangle{
			{p(0, 0, 0), p(0, 1, 0), p(1, 1, 0)}, {p(0, 0, 0), p(1, 1, 0), p(1, 0, 0)},
			{p(0, 0, 1), p(1, 0, 1), p(1, 1, 1)}, {p(0, 0, 1), p(1, 1, 1), p(0, 1, 1)},
			{p(0, 0, 0), p(1, 0, 0), p(1, 0, 1)}, {p(0, 0, 0), p(1, 0, 1), p(0, 0, 1)},
			{p(0, 1, 0), p(0, 1, 1), p(1, 1, 1)}, {p(0, 1, 0), p(1, 1, 1), p(1, 1, 0)},
			{p(0, 0, 0), p(0, 0, 1), p(0, 1, 1)}, {p(0, 0, 0), p(0, 1, 1), p(0, 1, 0)},
			{p(1, 0, 0), p(1, 1, 0), p(1, 1, 1)}, {p(1, 0, 0), p(1, 1, 1), p(1, 0, 1)},
		},
	}
}

// BinarySTL encodes m in the binary STL layout with zero normals.
func BinarySTL(m *mesh.Mesh) []byte {
	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "binary test mesh")
	buf.Write(header)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(m.Triangles)))

	for _, tri := range m.Triangles {
		writeVec(&buf, v3.Vec{})
		for _, v := range tri {
			writeVec(&buf, v)
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func writeVec(buf *bytes.Buffer, v v3.Vec) {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		_ = binary.Write(buf, binary.LittleEndian, math.Float32bits(float32(c)))
	}
}
