package crystal

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WorkItem is a face still to be traced: Plane is walked starting at Start,
// a point on its edge with Adjacent.
type WorkItem struct {
	Plane    int
	Start    r3.Vec
	Adjacent int
}

// Seed finds the first face to trace. The plane closest to the origin is
// always part of the boundary; a search along any in-plane direction from
// its foot point finds the first edge.
func (s PlaneSet) Seed(eps float64) (WorkItem, error) {
	if err := s.Check(); err != nil {
		return WorkItem{}, err
	}
	idx := s.Closest()
	p := s[idx]

	// Offset along the axis the normal leans on least, so the projected
	// direction cannot collapse.
	comps := [3]float64{math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)}
	axis := 0
	for i := 1; i < 3; i++ {
		if comps[i] < comps[axis] {
			axis = i
		}
	}
	var offset r3.Vec
	switch axis {
	case 0:
		offset.X = 1
	case 1:
		offset.Y = 1
	case 2:
		offset.Z = 1
	}
	other := ProjectToPlane(r3.Add(p, offset), p, p)
	dir := r3.Sub(other, p)

	hit, ok := s.Nearest(p, dir, NewIndexSet(len(s), idx), p, eps)
	if !ok {
		return WorkItem{}, &FaceError{Kind: NoIntersection, Plane: idx, Adjacent: -1}
	}
	return WorkItem{Plane: idx, Start: hit.Point, Adjacent: hit.Plane}, nil
}
