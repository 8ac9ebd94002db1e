// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. A plane set becomes the
// signed distance to an intersection of half-spaces, meshed by marching
// cubes. The result is approximate; use the facet kernel for exact faces.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/crystal/pkg/crystal"
	"github.com/chazu/crystal/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel = (*SdfxKernel)(nil)
	_ sdf.SDF3      = (*halfSpaces)(nil)
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// halfSpaces is the SDF3 of a convex plane set. Inside every plane the value
// is the largest (least negative) plane distance; outside it is a lower
// bound on the true distance, which marching cubes tolerates.
type halfSpaces struct {
	normals []v3.Vec
	dists   []float64
	bb      sdf.Box3
}

// Evaluate returns the signed distance estimate at p.
func (h *halfSpaces) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for i, n := range h.normals {
		d = math.Max(d, n.X*p.X+n.Y*p.Y+n.Z*p.Z-h.dists[i])
	}
	return d
}

// BoundingBox returns the bounds of the reconstructed solid.
func (h *halfSpaces) BoundingBox() sdf.Box3 {
	return h.bb
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns an SdfxKernel meshing with the given number of
// marching cubes cells along the longest axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Polyhedron builds the half-space SDF of planes. The plane walk runs once
// to find a finite bounding box; an unbounded or degenerate set fails here.
func (k *SdfxKernel) Polyhedron(planes []r3.Vec) (kernel.Solid, error) {
	if err := crystal.PlaneSet(planes).Check(); err != nil {
		return nil, err
	}
	res, err := crystal.Assemble(planes, crystal.Options{})
	if err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	if res.Mesh.IsEmpty() {
		return nil, fmt.Errorf("sdfx: plane set has no faces")
	}

	h := &halfSpaces{}
	for _, p := range planes {
		n := r3.Unit(p)
		h.normals = append(h.normals, v3.Vec{X: n.X, Y: n.Y, Z: n.Z})
		h.dists = append(h.dists, r3.Norm(p))
	}

	lo, hi := res.Mesh.Points[0], res.Mesh.Points[0]
	for _, p := range res.Mesh.Points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	h.bb = sdf.Box3{
		Min: v3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z},
		Max: v3.Vec{X: hi.X, Y: hi.Y, Z: hi.Z},
	}
	return wrap(h), nil
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles")
	}

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
