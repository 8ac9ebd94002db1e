package crystal

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// Options tunes Assemble. The zero value uses the defaults.
type Options struct {
	// Epsilon is the tie band for simultaneous plane crossings and the
	// distance under which boundary points count as the same point.
	Epsilon float64
	// Label names the resulting mesh; empty means "<n> sided solid".
	Label string
}

func (o Options) epsilon() float64 {
	if o.Epsilon > 0 {
		return o.Epsilon
	}
	return DefaultEpsilon
}

// FaceReport is the diagnostic record of one attempted face.
type FaceReport struct {
	Plane    int
	Adjacent int
	Points   int   // boundary points found, 0 on failure
	Planes   int   // planes contacted
	Err      error // nil on success
}

// Result is the outcome of a reconstruction.
type Result struct {
	Mesh Mesh
	// Planes lists every plane index that was queued for tracing, in queue
	// order. Planes that never touch the solid are absent.
	Planes []int
	// Reports has one entry per attempted face, in queue order.
	Reports []FaceReport
	// Breaches lists inconsistent face adjacencies. They are detected after
	// the fact and left in the mesh.
	Breaches []*FaceError
}

// Skipped returns the reports of faces that failed to trace.
func (r *Result) Skipped() []FaceReport {
	var out []FaceReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			out = append(out, rep)
		}
	}
	return out
}

// Assemble reconstructs the convex solid bounded by planes.
//
// Faces are traced breadth-first from the seed face; every plane contacted
// by a finished face is queued once. A face that fails with ParallelPlanes
// or NoIntersection is reported and skipped, except for the first face, whose
// failure fails the call. A face that closes with fewer than three distinct
// points fails the call.
func Assemble(planes []r3.Vec, opts Options) (*Result, error) {
	s := PlaneSet(planes)
	eps := opts.epsilon()

	seed, err := s.Seed(eps)
	if err != nil {
		return nil, fmt.Errorf("crystal: seed: %w", err)
	}

	res := &Result{}
	boundaries := make(map[int][]int)
	seen := NewIndexSet(len(s), seed.Plane)

	queue := []WorkItem{seed}
	for head := 0; head < len(queue); head++ {
		item := queue[head]
		res.Planes = append(res.Planes, item.Plane)

		b, err := s.Walk(item, eps)
		if err != nil {
			if head == 0 {
				return nil, fmt.Errorf("crystal: first face: %w", err)
			}
			res.Reports = append(res.Reports, FaceReport{Plane: item.Plane, Adjacent: item.Adjacent, Err: err})
			continue
		}
		if distinctPoints(b.Points, eps) < 3 {
			return nil, &FaceError{
				Kind:      InsufficientBoundaryPoints,
				Plane:     item.Plane,
				Adjacent:  item.Adjacent,
				Contacted: b.Contacted,
			}
		}

		base := len(res.Mesh.Points)
		loop := make([]int, len(b.Points))
		for i := range loop {
			loop[i] = base + i
		}
		res.Mesh.Points = append(res.Mesh.Points, b.Points...)
		res.Mesh.Faces = append(res.Mesh.Faces, Face{Plane: item.Plane, Loop: loop})
		res.Reports = append(res.Reports, FaceReport{
			Plane:    item.Plane,
			Adjacent: item.Adjacent,
			Points:   len(b.Points),
			Planes:   len(b.Contacted),
		})
		boundaries[item.Plane] = b.Contacted

		for k, idx := range b.Contacted {
			if seen.Has(idx) {
				continue
			}
			seen.Add(idx)
			// The neighbour walks this edge the other way, so it starts
			// from the point after the crossing.
			next := b.Points[(k+1)%len(b.Points)]
			queue = append(queue, WorkItem{Plane: idx, Start: next, Adjacent: item.Plane})
		}
	}

	res.Breaches = findBreaches(res.Mesh.Faces, boundaries)
	res.Mesh.Label = opts.Label
	if res.Mesh.Label == "" {
		res.Mesh.Label = fmt.Sprintf("%d sided solid", len(res.Mesh.Faces))
	}
	return res, nil
}

// findBreaches flags faces whose walk touched a plane twice before closing,
// and pairs of traced faces where only one side sees the shared edge.
func findBreaches(faces []Face, boundaries map[int][]int) []*FaceError {
	var out []*FaceError
	// Walk excludes every plane it has contacted, so on its output this
	// pass stays silent; the symmetry pass below is the one that fires.
	for _, f := range faces {
		contacted := boundaries[f.Plane]
		for i, idx := range contacted[:len(contacted)-1] {
			if slices.Contains(contacted[:i], idx) {
				out = append(out, &FaceError{Kind: EnvelopeBreach, Plane: f.Plane, Adjacent: idx, Contacted: contacted})
				break
			}
		}
	}
	for _, f := range faces {
		for _, idx := range boundaries[f.Plane] {
			other, ok := boundaries[idx]
			if !ok || slices.Contains(other, f.Plane) {
				continue
			}
			out = append(out, &FaceError{Kind: EnvelopeBreach, Plane: f.Plane, Adjacent: idx, Contacted: boundaries[f.Plane]})
		}
	}
	return out
}
