//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). A convex figure
// is carved out of Manifold blocks, one half-space cut per plane, so the
// result carries Manifold's guaranteed-manifold topology.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/chazu/crystal/pkg/crystal"
	"github.com/chazu/crystal/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr   *C.ManifoldManifold
	faces int
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold, faces int) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr, faces: faces}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// halfSpace returns a block filling the inside of plane p out to size.
func halfSpace(p r3.Vec, size float64) *C.ManifoldManifold {
	block := C.manifold_cube(C.manifold_alloc_manifold(),
		C.double(size), C.double(size), C.double(size),
		C.int(1), // center=true
	)
	// Top face on z = 0.
	lowered := C.manifold_translate(C.manifold_alloc_manifold(), block,
		C.double(0), C.double(0), C.double(-size/2))
	C.manifold_delete_manifold(block)

	y, z := halfSpaceAngles(p)
	turned := C.manifold_rotate(C.manifold_alloc_manifold(), lowered,
		C.double(0), C.double(y), C.double(z))
	C.manifold_delete_manifold(lowered)

	placed := C.manifold_translate(C.manifold_alloc_manifold(), turned,
		C.double(p.X), C.double(p.Y), C.double(p.Z))
	C.manifold_delete_manifold(turned)
	return placed
}

// Polyhedron carves the figure bounded by planes. The planes are first
// reconstructed exactly to size the cutting blocks and reject figures that
// do not close.
func (k *ManifoldKernel) Polyhedron(planes []r3.Vec) (kernel.Solid, error) {
	if err := crystal.PlaneSet(planes).Check(); err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	res, err := crystal.Assemble(planes, crystal.Options{})
	if err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	size := clipExtent(res.Mesh.Points)

	var ptr *C.ManifoldManifold
	for _, i := range res.Planes {
		cut := halfSpace(planes[i], size)
		if ptr == nil {
			ptr = cut
			continue
		}
		next := C.manifold_intersection(C.manifold_alloc_manifold(), ptr, cut)
		C.manifold_delete_manifold(ptr)
		C.manifold_delete_manifold(cut)
		ptr = next
	}
	return newSolid(ptr, res.Mesh.FaceCount()), nil
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	sa := a.(*manifoldSolid)
	sb := b.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_intersection(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr, 0)
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr, ms.faces)
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr, ms.faces)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex positions and normals are interleaved in MeshGL; this
// method separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms := s.(*manifoldSolid)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))

	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: solid is empty")
	}

	// The first 3 properties are position; normals follow at 3, 4, 5
	// when present.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))

	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}

	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}

	if !hasNormals {
		normals = computeFlatNormals(vertices, indices)
	}

	mesh := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Faces:    ms.faces,
	}

	if mesh.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d",
			mesh.VertexCount(), numVert)
	}

	return mesh, nil
}

// computeFlatNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	numVerts := len(vertices) / 3
	normals := make([]float32, numVerts*3)

	vec := func(i uint32) r3.Vec {
		return r3.Vec{X: float64(vertices[i*3]), Y: float64(vertices[i*3+1]), Z: float64(vertices[i*3+2])}
	}

	numTris := len(indices) / 3
	for t := 0; t < numTris; t++ {
		tri := indices[t*3 : t*3+3]
		a, b, c := vec(tri[0]), vec(tri[1]), vec(tri[2])
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))

		for _, idx := range tri {
			normals[idx*3+0] += float32(n.X)
			normals[idx*3+1] += float32(n.Y)
			normals[idx*3+2] += float32(n.Z)
		}
	}

	for i := 0; i < numVerts; i++ {
		n := normals[i*3 : i*3+3]
		length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if length > 1e-12 {
			for j := range n {
				n[j] = float32(float64(n[j]) / length)
			}
		}
	}

	return normals
}
