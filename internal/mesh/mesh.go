// Package mesh parses uploaded triangle meshes and measures them.
//
// Coordinates are taken as millimeters. Only STL files are measured; OBJ
// uploads are accepted by the order flow but never parsed here.
package mesh

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/hschendel/stl"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	ExtSTL = ".stl"
	ExtOBJ = ".obj"
)

// Triangle is three vertices in file order.
type Triangle [3]v3.Vec

// Mesh is an immutable triangle soup.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Scaled returns a copy of the mesh with every vertex multiplied by factor.
// A factor of 1 (or a non-positive one) returns the receiver unchanged.
func (m *Mesh) Scaled(factor float64) *Mesh {
	if factor <= 0 || factor == 1 {
		return m
	}

	out := &Mesh{Name: m.Name, Triangles: make([]Triangle, len(m.Triangles))}
	for i, tri := range m.Triangles {
		for j := range tri {
			out.Triangles[i][j] = tri[j].MulScalar(factor)
		}
	}
	return out
}

// CheckFormat reports whether filename has an extension accepted for upload.
func CheckFormat(filename string) error {
	switch ext(filename) {
	case ExtSTL, ExtOBJ:
		return nil
	default:
		return &UnsupportedFormatError{FileName: filename}
	}
}

// Measurable reports whether the file is run through geometry calculation.
func Measurable(filename string) bool {
	return ext(filename) == ExtSTL
}

// Parse decodes mesh bytes. The filename selects the parser.
func Parse(filename string, data []byte) (*Mesh, error) {
	if err := CheckFormat(filename); err != nil {
		return nil, err
	}
	if !Measurable(filename) {
		return nil, &GeometryError{Reason: "format " + ext(filename) + " is not measured"}
	}
	if len(data) == 0 {
		return nil, &GeometryError{Reason: "empty file"}
	}

	solid, err := stl.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, &GeometryError{Reason: "decode stl", Err: err}
	}

	m := &Mesh{Name: solid.Name, Triangles: make([]Triangle, 0, len(solid.Triangles))}
	for _, t := range solid.Triangles {
		var tri Triangle
		for j, v := range t.Vertices {
			tri[j] = v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		m.Triangles = append(m.Triangles, tri)
	}
	return m, nil
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
