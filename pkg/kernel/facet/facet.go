// Package facet implements the kernel.Kernel interface by exact plane-walk
// reconstruction. Solids are plane sets about a center; meshes are the
// welded faces fan-triangulated with flat normals.
package facet

import (
	"errors"
	"fmt"

	"github.com/chazu/crystal/pkg/crystal"
	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/hull"
	"github.com/chazu/crystal/pkg/kernel"
	"github.com/chazu/crystal/pkg/weld"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*FacetKernel)(nil)

// facetSolid is a plane set expressed relative to center, with its
// reconstruction computed once at construction.
type facetSolid struct {
	center r3.Vec
	planes []r3.Vec
	res    *crystal.Result
	welded weld.Welded
	err    error
}

// BoundingBox returns the axis-aligned bounding box of the reconstructed
// vertices. A solid that failed to reconstruct has a zero-size box at its
// center.
func (s *facetSolid) BoundingBox() (min, max [3]float64) {
	c := [3]float64{s.center.X, s.center.Y, s.center.Z}
	min, max = c, c
	for i, v := range s.welded.Vertices {
		p := [3]float64{s.center.X + v.X, s.center.Y + v.Y, s.center.Z + v.Z}
		for k := range p {
			if i == 0 || p[k] < min[k] {
				min[k] = p[k]
			}
			if i == 0 || p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// FacetKernel implements kernel.Kernel with crystal reconstruction.
type FacetKernel struct {
	// Epsilon is the reconstruction tie band; zero uses
	// crystal.DefaultEpsilon.
	Epsilon float64
	// Weld is the vertex merge tolerance; zero uses weld.DefaultTolerance.
	Weld float64
	// Verify cross-checks every mesh against a convex hull and reports
	// buried vertices as warnings.
	Verify bool
}

// New returns a new FacetKernel with default tolerances.
func New() *FacetKernel {
	return &FacetKernel{}
}

func unwrap(s kernel.Solid) *facetSolid {
	return s.(*facetSolid)
}

// build reconstructs planes about center. Exact duplicate planes are
// dropped first; they would otherwise tie on every crossing.
func (k *FacetKernel) build(center r3.Vec, planes []r3.Vec) *facetSolid {
	s := &facetSolid{center: center, planes: lo.Uniq(planes)}
	if err := crystal.PlaneSet(s.planes).Check(); err != nil {
		s.err = err
		return s
	}
	s.res, s.err = crystal.Assemble(s.planes, crystal.Options{Epsilon: k.Epsilon})
	if s.err == nil {
		s.welded = weld.Weld(s.res.Mesh.Points, s.res.Mesh.Loops(), k.Weld)
	}
	return s
}

// Polyhedron reconstructs the convex solid bounded by planes.
func (k *FacetKernel) Polyhedron(planes []r3.Vec) (kernel.Solid, error) {
	s := k.build(r3.Vec{}, planes)
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

// Intersection concatenates the plane sets of a and b about a common
// center. The midpoint of the two centers is tried first, then each center
// in turn; if none lies strictly inside both solids the intersection is
// treated as empty and ToMesh reports it.
func (k *FacetKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa, sb := unwrap(a), unwrap(b)
	if sa.err != nil {
		return sa
	}
	if sb.err != nil {
		return sb
	}

	mid := r3.Scale(0.5, r3.Add(sa.center, sb.center))
	for _, c := range []r3.Vec{mid, sa.center, sb.center} {
		pa, err := figure.Recenter(sa.planes, r3.Sub(c, sa.center))
		if err != nil {
			continue
		}
		pb, err := figure.Recenter(sb.planes, r3.Sub(c, sb.center))
		if err != nil {
			continue
		}
		return k.build(c, append(pa, pb...))
	}
	return &facetSolid{center: mid, err: errors.New("facet: intersection has no common interior point")}
}

// Translate moves a solid by (x, y, z).
func (k *FacetKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	fs := unwrap(s)
	out := *fs
	out.center = r3.Add(fs.center, r3.Vec{X: x, Y: y, Z: z})
	return &out
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes,
// about the world origin.
func (k *FacetKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	fs := unwrap(s)
	if fs.err != nil {
		return fs
	}
	planes := lo.Map(fs.planes, func(p r3.Vec, _ int) r3.Vec {
		return kernel.RotateVec(p, x, y, z)
	})
	return k.build(kernel.RotateVec(fs.center, x, y, z), planes)
}

// ToMesh fan-triangulates every welded face. Each face gets its own
// vertices so normals stay flat.
func (k *FacetKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	fs := unwrap(s)
	if fs.err != nil {
		return nil, fs.err
	}

	m := &kernel.Mesh{Name: fs.res.Mesh.Label}
	for _, loop := range fs.welded.Faces {
		n := faceNormal(fs.welded.Vertices, loop)
		base := uint32(m.VertexCount())
		for _, vi := range loop {
			v := r3.Add(fs.center, fs.welded.Vertices[vi])
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		for j := 1; j+1 < len(loop); j++ {
			m.Indices = append(m.Indices, base, base+uint32(j), base+uint32(j+1))
		}
	}
	m.Faces = len(fs.welded.Faces)
	m.Warnings = k.warnings(fs)
	return m, nil
}

func (k *FacetKernel) warnings(fs *facetSolid) []string {
	var out []string
	for _, rep := range fs.res.Skipped() {
		out = append(out, fmt.Sprintf("skipped face %d: %v", rep.Plane, rep.Err))
	}
	for _, b := range fs.res.Breaches {
		out = append(out, b.Error())
	}
	if fs.welded.Dropped > 0 {
		out = append(out, fmt.Sprintf("%d faces collapsed while welding", fs.welded.Dropped))
	}
	if k.Verify {
		rep, err := hull.Verify(fs.welded.Vertices, 0)
		switch {
		case err != nil:
			out = append(out, fmt.Sprintf("hull check: %v", err))
		case !rep.Convex():
			out = append(out, fmt.Sprintf("hull check: vertices %v are not hull corners", rep.Interior))
		}
	}
	return out
}

// faceNormal returns the unit Newell normal of a loop.
func faceNormal(vertices []r3.Vec, loop []int) r3.Vec {
	var n r3.Vec
	for i, vi := range loop {
		next := vertices[loop[(i+1)%len(loop)]]
		n = r3.Add(n, r3.Cross(vertices[vi], next))
	}
	if n == (r3.Vec{}) {
		return n
	}
	return r3.Unit(n)
}
