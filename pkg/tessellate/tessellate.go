// Package tessellate walks a figure library and produces triangle meshes
// using a geometry kernel. One mesh is produced per figure.
package tessellate

import (
	"fmt"
	"log"

	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/kernel"
)

// Tessellate builds every figure in lib with k, clipped and rotated as the
// figure asks, placed at its origin, and
// returns the meshes in library order. The library is never mutated.
// Non-fatal reconstruction problems are logged and kept on Mesh.Warnings;
// a figure that cannot be built at all fails the call.
func Tessellate(lib *figure.Library, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if lib == nil {
		return nil, nil
	}

	meshes := make([]*kernel.Mesh, 0, lib.Len())
	for _, f := range lib.Figures() {
		mesh, err := tessellateFigure(f, k)
		if err != nil {
			return nil, fmt.Errorf("tessellate: crystal %q: %w", f.Name, err)
		}
		for _, w := range mesh.Warnings {
			log.Printf("crystal %q: %s", f.Name, w)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// tessellateFigure creates geometry for a single figure.
func tessellateFigure(f figure.Figure, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := k.Polyhedron(f.Planes)
	if err != nil {
		return nil, err
	}

	if len(f.Clip) > 0 {
		clip, err := k.Polyhedron(f.Clip)
		if err != nil {
			return nil, fmt.Errorf("clip: %w", err)
		}
		solid = k.Intersection(solid, clip)
	}

	r := f.Rotation
	if r.X != 0 || r.Y != 0 || r.Z != 0 {
		solid = k.Rotate(solid, r.X, r.Y, r.Z)
	}

	o := f.Origin
	if o.X != 0 || o.Y != 0 || o.Z != 0 {
		solid = k.Translate(solid, o.X, o.Y, o.Z)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed: %w", err)
	}
	mesh.Name = f.Name
	return mesh, nil
}
