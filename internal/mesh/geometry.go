package mesh

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MinTriangles is the smallest triangle count that can close a solid.
const MinTriangles = 4

const mm3PerCm3 = 1000.0

// Dimensions are the bounding box extents in millimeters.
type Dimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Geometry is the measured size of a mesh.
type Geometry struct {
	VolumeCm3  float64    `json:"volumeCm3"`
	Dimensions Dimensions `json:"dimensions"`
}

// ComputeGeometry measures the enclosed volume and bounding box of m.
//
// Volume sums the signed tetrahedra spanned by each triangle and the origin.
// Open or self-intersecting meshes yield a wrong but finite number. The sign
// is dropped so inward-facing meshes measure the same as outward ones.
func ComputeGeometry(m *Mesh) (Geometry, error) {
	if m == nil || m.TriangleCount() < MinTriangles {
		n := 0
		if m != nil {
			n = m.TriangleCount()
		}
		return Geometry{}, &GeometryError{Reason: fmt.Sprintf("mesh has %d triangles, need at least %d", n, MinTriangles)}
	}

	var signed float64
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}

	for _, tri := range m.Triangles {
		signed += tri[0].Dot(tri[1].Cross(tri[2])) / 6.0
		for _, v := range tri {
			lo = lo.Min(v)
			hi = hi.Max(v)
		}
	}

	if math.IsNaN(signed) || math.IsInf(signed, 0) {
		return Geometry{}, &GeometryError{Reason: "mesh contains non-finite coordinates"}
	}

	size := hi.Sub(lo)
	return Geometry{
		VolumeCm3:  math.Abs(signed) / mm3PerCm3,
		Dimensions: Dimensions{X: size.X, Y: size.Y, Z: size.Z},
	}, nil
}
