package mesh_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/shiftprint/internal/mesh"
	"github.com/Simplici0/shiftprint/internal/mesh/meshtest"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestComputeGeometry_UnitCube(t *testing.T) {
	geo, err := mesh.ComputeGeometry(meshtest.Cube(10))
	if err != nil {
		t.Fatalf("ComputeGeometry: %v", err)
	}

	nearlyEqual(t, "volume", geo.VolumeCm3, 1.0)
	nearlyEqual(t, "x", geo.Dimensions.X, 10)
	nearlyEqual(t, "y", geo.Dimensions.Y, 10)
	nearlyEqual(t, "z", geo.Dimensions.Z, 10)
}

func TestComputeGeometry_InvertedCubeHasPositiveVolume(t *testing.T) {
	cube := meshtest.Cube(10)
	for i, tri := range cube.Triangles {
		cube.Triangles[i] = mesh.Triangle{tri[0], tri[2], tri[1]}
	}

	geo, err := mesh.ComputeGeometry(cube)
	if err != nil {
		t.Fatalf("ComputeGeometry: %v", err)
	}
	nearlyEqual(t, "volume", geo.VolumeCm3, 1.0)
}

func TestComputeGeometry_TooFewTriangles(t *testing.T) {
	for _, m := range []*mesh.Mesh{nil, {}, {Triangles: meshtest.Cube(1).Triangles[:3]}} {
		_, err := mesh.ComputeGeometry(m)
		var geoErr *mesh.GeometryError
		if !errors.As(err, &geoErr) {
			t.Fatalf("expected GeometryError, got %v", err)
		}
	}
}

func TestParse_BinarySTL(t *testing.T) {
	data := meshtest.BinarySTL(meshtest.Cube(20))

	m, err := mesh.Parse("part.STL", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Fatalf("triangles = %d, want 12", m.TriangleCount())
	}

	geo, err := mesh.ComputeGeometry(m)
	if err != nil {
		t.Fatalf("ComputeGeometry: %v", err)
	}
	nearlyEqual(t, "volume", geo.VolumeCm3, 8.0)
}

func TestParse_ASCIISTL(t *testing.T) {
	data := []byte(`solid tri
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid tri
`)
	m, err := mesh.Parse("tri.stl", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("triangles = %d, want 1", m.TriangleCount())
	}
}

func TestParse_RejectsUnsupportedExtension(t *testing.T) {
	_, err := mesh.Parse("model.step", []byte("x"))
	var fmtErr *mesh.UnsupportedFormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestParse_EmptyOrCorrupt(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not a mesh"),
	} {
		_, err := mesh.Parse("x.stl", data)
		var geoErr *mesh.GeometryError
		if !errors.As(err, &geoErr) {
			t.Fatalf("%s: expected GeometryError, got %v", name, err)
		}
	}
}

func TestCheckFormatAndMeasurable(t *testing.T) {
	if err := mesh.CheckFormat("a.obj"); err != nil {
		t.Fatalf("obj should be accepted: %v", err)
	}
	if mesh.Measurable("a.obj") {
		t.Fatalf("obj should not be measured")
	}
	if !mesh.Measurable("A.Stl") {
		t.Fatalf("stl should be measured regardless of case")
	}
	if err := mesh.CheckFormat("a.3mf"); err == nil {
		t.Fatalf("3mf should be rejected")
	}
}

func TestScaled(t *testing.T) {
	cube := meshtest.Cube(10)
	geo, err := mesh.ComputeGeometry(cube.Scaled(2))
	if err != nil {
		t.Fatalf("ComputeGeometry: %v", err)
	}
	nearlyEqual(t, "volume", geo.VolumeCm3, 8.0)
	nearlyEqual(t, "x", geo.Dimensions.X, 20)

	if cube.Scaled(1) != cube {
		t.Fatalf("scale 1 should return the same mesh")
	}
}
