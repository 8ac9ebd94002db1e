package crystal

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the absolute distance within which two plane crossings
// along a search ray count as simultaneous.
const DefaultEpsilon = 1e-4

// PlaneSet is the read-only list of bounding planes. A plane is identified
// by its index.
type PlaneSet []r3.Vec

// Check rejects plane sets the walk cannot start from.
func (s PlaneSet) Check() error {
	if len(s) == 0 {
		return fmt.Errorf("crystal: empty plane set")
	}
	for i, p := range s {
		if p == (r3.Vec{}) {
			return fmt.Errorf("crystal: plane %d is the zero vector", i)
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
			math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
			return fmt.Errorf("crystal: plane %d is not finite: %v", i, p)
		}
	}
	return nil
}

// Hit is a plane crossing found by Nearest.
type Hit struct {
	Point    r3.Vec
	Plane    int
	Distance float64
}

type candidate struct {
	Hit
	merit float64
}

// Nearest casts a ray from start along dir and returns the closest plane it
// crosses from the inside, skipping planes in exclude. Crossings within eps
// of the closest are ties; among them the plane minimising
// dot(dir, cross(adjacent, plane)) wins, which is the face that wraps most
// sharply around the current edge. It reports false when nothing is hit.
func (s PlaneSet) Nearest(start, dir r3.Vec, exclude *IndexSet, adjacent r3.Vec, eps float64) (Hit, bool) {
	lim := RayLimits{Forward: true, Facing: true}

	var found []candidate
	closest := math.Inf(1)
	for i, p := range s {
		if exclude.Has(i) {
			continue
		}
		pt, ok := RayPlane(start, dir, p, p, lim)
		if !ok {
			continue
		}
		d := r3.Norm(r3.Sub(pt, start))
		found = append(found, candidate{Hit: Hit{Point: pt, Plane: i, Distance: d}})
		closest = min(closest, d)
	}
	if len(found) == 0 {
		return Hit{}, false
	}

	tied := found[:0]
	for _, c := range found {
		if c.Distance <= closest+eps {
			c.merit = r3.Dot(dir, r3.Cross(adjacent, s[c.Plane]))
			tied = append(tied, c)
		}
	}
	best := slices.MinFunc(tied, func(a, b candidate) int {
		if c := cmp.Compare(a.merit, b.merit); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Plane, b.Plane)
	})
	return best.Hit, true
}

// Closest returns the index of the plane nearest the origin, the lowest
// index on ties.
func (s PlaneSet) Closest() int {
	idx := -1
	best := math.Inf(1)
	for i, p := range s {
		if d := r3.Norm(p); d < best {
			idx, best = i, d
		}
	}
	return idx
}
