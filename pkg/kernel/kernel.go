// Package kernel defines the abstract geometry kernel interface.
// Implementations (facet, sdfx) turn plane-set figures into solids and
// meshes behind this interface, so the rest of the system can swap an exact
// polygonal backend for a sampled one without changing.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Polyhedron builds the convex solid bounded by planes. Each plane is
	// its outward normal scaled to its distance from the origin.
	Polyhedron(planes []r3.Vec) (Solid, error)

	// Intersection returns the region inside both solids.
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// RotateVec rotates v by Euler angles in degrees about X, then Y, then Z,
// matching the order the kernels apply to solids.
func RotateVec(v r3.Vec, x, y, z float64) r3.Vec {
	v = r3.Rotate(v, x*math.Pi/180.0, r3.Vec{X: 1})
	v = r3.Rotate(v, y*math.Pi/180.0, r3.Vec{Y: 1})
	return r3.Rotate(v, z*math.Pi/180.0, r3.Vec{Z: 1})
}
