package crystal

import "gonum.org/v1/gonum/spatial/r3"

// Boundary is the closed polygon a plane contributes to the solid.
// Contacted[k] is the plane crossed to reach Points[k]; the edge from
// Points[k] to Points[k+1] lies on Contacted[k]. The last contacted plane is
// always the one the walk started from.
type Boundary struct {
	Points    []r3.Vec
	Contacted []int
}

// Walk traces the boundary of item.Plane counter-clockwise as seen from
// outside, beginning on its edge with item.Adjacent and stopping when the
// walk crosses item.Adjacent again.
func (s PlaneSet) Walk(item WorkItem, eps float64) (Boundary, error) {
	plane := s[item.Plane]

	// The starting edge stays excluded for the first two steps so the walk
	// cannot close on itself immediately.
	exclude := NewIndexSet(len(s), item.Adjacent, item.Plane)
	point, current := item.Start, item.Adjacent

	var b Boundary
	for step := 0; ; step++ {
		if step == 2 {
			exclude.Remove(item.Adjacent)
		}
		edge := s[current]
		dir := r3.Cross(plane, edge)
		if dir == (r3.Vec{}) {
			return Boundary{}, &FaceError{Kind: ParallelPlanes, Plane: item.Plane, Adjacent: current, Contacted: b.Contacted}
		}

		hit, ok := s.Nearest(point, dir, exclude, edge, eps)
		if !ok {
			return Boundary{}, &FaceError{Kind: NoIntersection, Plane: item.Plane, Adjacent: current, Contacted: b.Contacted}
		}
		b.Points = append(b.Points, hit.Point)
		b.Contacted = append(b.Contacted, hit.Plane)
		exclude.Add(hit.Plane)

		if hit.Plane == item.Adjacent {
			return b, nil
		}
		point, current = hit.Point, hit.Plane
	}
}

// distinctPoints counts points that are more than eps apart from every
// earlier point.
func distinctPoints(pts []r3.Vec, eps float64) int {
	n := 0
outer:
	for i, p := range pts {
		for _, q := range pts[:i] {
			if r3.Norm(r3.Sub(p, q)) <= eps {
				continue outer
			}
		}
		n++
	}
	return n
}
