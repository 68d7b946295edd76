package mesh

import "fmt"

// GeometryError means the mesh could not be parsed or is too degenerate to
// measure. Orders with such a mesh are still created, without a cost.
type GeometryError struct {
	Reason string
	Err    error
}

func (e *GeometryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geometry: %s: %v", e.Reason, e.Err)
	}
	return "geometry: " + e.Reason
}

func (e *GeometryError) Unwrap() error { return e.Err }

// UnsupportedFormatError rejects an upload before anything is stored.
type UnsupportedFormatError struct {
	FileName string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q: only STL and OBJ files are supported", e.FileName)
}
