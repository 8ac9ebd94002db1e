package export

import (
	"fmt"

	"github.com/chazu/crystal/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangles converts meshes to sdfx triangles, all in one list.
func Triangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			t := m.Triangle(i)
			var tri sdf.Triangle3
			for j, p := range t {
				tri[j] = v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
			}
			out = append(out, &tri)
		}
	}
	return out
}

// STL writes every mesh into one binary STL file.
func STL(path string, meshes []*kernel.Mesh) error {
	tris := Triangles(meshes)
	if len(tris) == 0 {
		return fmt.Errorf("export: stl: no triangles to write")
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: stl: %w", err)
	}
	return nil
}
