// Package hull cross-checks reconstructed solids against an independent
// convex hull. Every welded vertex of a correct reconstruction is a corner
// of the hull of all vertices; a vertex buried inside the hull points to an
// envelope breach or a bad input figure.
package hull

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
	gr3 "gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the planarity tolerance used when none is given.
const DefaultEpsilon = 1e-9

// Report summarises a hull check.
type Report struct {
	Vertices  int   // vertices checked
	Triangles int   // triangles of the hull
	Interior  []int // vertices no hull triangle uses, in input order
}

// Convex reports whether every vertex is a hull corner.
func (r Report) Convex() bool {
	return len(r.Interior) == 0
}

// Verify builds the convex hull of vertices and reports the ones that are
// not on it. eps is quickhull's planarity tolerance; non-positive values use
// DefaultEpsilon.
func Verify(vertices []gr3.Vec, eps float64) (Report, error) {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	if len(vertices) < 4 {
		return Report{}, fmt.Errorf("hull: need at least 4 vertices, got %d", len(vertices))
	}

	cloud := make([]r3.Vector, len(vertices))
	byPos := make(map[r3.Vector][]int, len(vertices))
	for i, v := range vertices {
		cloud[i] = r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
		byPos[cloud[i]] = append(byPos[cloud[i]], i)
	}

	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(cloud, true, true, eps)
	if len(ch.Indices) == 0 || len(ch.Indices)%3 != 0 {
		return Report{}, fmt.Errorf("hull: quickhull returned %d indices for %d vertices", len(ch.Indices), len(vertices))
	}

	used := make([]bool, len(vertices))
	for _, idx := range ch.Indices {
		if idx < 0 || idx >= len(ch.Vertices) {
			return Report{}, fmt.Errorf("hull: index %d out of range", idx)
		}
		for _, i := range byPos[ch.Vertices[idx]] {
			used[i] = true
		}
	}

	rep := Report{Vertices: len(vertices), Triangles: len(ch.Indices) / 3}
	for i, ok := range used {
		if !ok {
			rep.Interior = append(rep.Interior, i)
		}
	}
	return rep, nil
}
