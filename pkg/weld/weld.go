// Package weld merges coincident mesh vertices within an absolute tolerance.
// Reconstruction emits every face with its own corners; welding turns that
// polygon soup into a shared-vertex mesh.
package weld

import (
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance matches the tie band used during reconstruction.
const DefaultTolerance = 1e-4

// Welded is a mesh with shared vertices.
type Welded struct {
	Vertices []r3.Vec
	Faces    [][]int
	// Remap[i] is the welded vertex that input point i merged into.
	Remap []int
	// Dropped counts input faces that collapsed below three vertices.
	Dropped int
}

// vertex is an R-tree entry for one welded vertex.
type vertex struct {
	index int
	pos   r3.Vec
	rect  rtreego.Rect
}

func (v *vertex) Bounds() rtreego.Rect {
	return v.rect
}

func point(p r3.Vec) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}

// Weld merges points lying within tol of an already welded vertex, in input
// order, so the first point of a cluster decides its position. Face loops
// are remapped, consecutive repeats removed, and loops left with fewer than
// three vertices dropped. A non-positive tol uses DefaultTolerance.
func Weld(points []r3.Vec, faces [][]int, tol float64) Welded {
	if tol <= 0 {
		tol = DefaultTolerance
	}

	tree := rtreego.NewTree(3, 8, 32)
	w := Welded{Remap: make([]int, len(points))}

	for i, p := range points {
		hits := tree.SearchIntersect(point(p).ToRect(tol))
		best, bestDist := -1, tol
		for _, h := range hits {
			v := h.(*vertex)
			if d := r3.Norm(r3.Sub(v.pos, p)); d <= bestDist {
				best, bestDist = v.index, d
			}
		}
		if best < 0 {
			best = len(w.Vertices)
			w.Vertices = append(w.Vertices, p)
			tree.Insert(&vertex{index: best, pos: p, rect: point(p).ToRect(tol / 2)})
		}
		w.Remap[i] = best
	}

	for _, loop := range faces {
		mapped := lo.Map(loop, func(i int, _ int) int { return w.Remap[i] })
		mapped = collapse(mapped)
		if len(lo.Uniq(mapped)) < 3 {
			w.Dropped++
			continue
		}
		w.Faces = append(w.Faces, mapped)
	}
	return w
}

// collapse removes consecutive repeats in a closed loop.
func collapse(loop []int) []int {
	out := make([]int, 0, len(loop))
	for _, v := range loop {
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// Edges returns the distinct undirected edges of the welded faces, each as
// a low/high vertex pair, in first-seen order.
func (w Welded) Edges() [][2]int {
	seen := make(map[[2]int]bool)
	var out [][2]int
	for _, f := range w.Faces {
		for i, a := range f {
			b := f[(i+1)%len(f)]
			e := [2]int{min(a, b), max(a, b)}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// EulerCharacteristic returns V - E + F, which is 2 for a closed convex
// surface.
func (w Welded) EulerCharacteristic() int {
	return len(w.Vertices) - len(w.Edges()) + len(w.Faces)
}
