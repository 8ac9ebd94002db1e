package export

import (
	"math"
	"sort"

	"github.com/chazu/crystal/pkg/kernel"
)

// Edge is a segment between two mesh corners.
type Edge [2][3]float32

// edgeKey identifies a segment by its quantised endpoints in a fixed order.
type edgeKey [2][3]int64

// quantum is the grid corners are snapped to when matching edges.
const quantum = 1e-4

func snap(p [3]float32) [3]int64 {
	return [3]int64{
		int64(math.Round(float64(p[0]) / quantum)),
		int64(math.Round(float64(p[1]) / quantum)),
		int64(math.Round(float64(p[2]) / quantum)),
	}
}

func less(a, b [3]int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func triNormal(t [3][3]float32) [3]float64 {
	var u, v [3]float64
	for i := 0; i < 3; i++ {
		u[i] = float64(t[1][i] - t[0][i])
		v[i] = float64(t[2][i] - t[0][i])
	}
	n := [3]float64{u[1]*v[2] - u[2]*v[1], u[2]*v[0] - u[0]*v[2], u[0]*v[1] - u[1]*v[0]}
	l := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l == 0 {
		return n
	}
	return [3]float64{n[0] / l, n[1] / l, n[2] / l}
}

// FeatureEdges returns the edges of m where the surface bends: edges
// between triangles whose normals differ, plus open boundary edges.
// Diagonals inside a flat polygon are dropped, so a fan-triangulated face
// draws as its outline. Edges are sorted for stable output.
func FeatureEdges(m *kernel.Mesh) []Edge {
	type entry struct {
		edge    Edge
		normals [][3]float64
	}
	byKey := make(map[edgeKey]*entry)

	for i := 0; i < m.TriangleCount(); i++ {
		t := m.Triangle(i)
		n := triNormal(t)
		for j := 0; j < 3; j++ {
			a, b := t[j], t[(j+1)%3]
			ka, kb := snap(a), snap(b)
			if ka == kb {
				continue
			}
			if less(kb, ka) {
				a, b, ka, kb = b, a, kb, ka
			}
			key := edgeKey{ka, kb}
			e, ok := byKey[key]
			if !ok {
				e = &entry{edge: Edge{a, b}}
				byKey[key] = e
			}
			e.normals = append(e.normals, n)
		}
	}

	keys := make([]edgeKey, 0, len(byKey))
	for k, e := range byKey {
		if len(e.normals) == 1 || bends(e.normals) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return less(keys[i][0], keys[j][0])
		}
		return less(keys[i][1], keys[j][1])
	})

	out := make([]Edge, len(keys))
	for i, k := range keys {
		out[i] = byKey[k].edge
	}
	return out
}

// bends reports whether any two normals differ by more than about a
// hundredth of a degree.
func bends(normals [][3]float64) bool {
	for _, n := range normals[1:] {
		d := n[0]*normals[0][0] + n[1]*normals[0][1] + n[2]*normals[0][2]
		if d < 1-1e-8 {
			return true
		}
	}
	return false
}
