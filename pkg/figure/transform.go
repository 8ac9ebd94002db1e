package figure

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chazu/crystal/pkg/crystal"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scale multiplies every plane distance by k.
func Scale(planes []r3.Vec, k float64) []r3.Vec {
	return lo.Map(planes, func(p r3.Vec, _ int) r3.Vec { return r3.Scale(k, p) })
}

// newRand returns the generator used for every randomised figure.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Jitter moves each plane along its normal by a random factor in
// [1-magnitude, 1+magnitude], keeping every face angle. The same seed always
// yields the same figure.
func Jitter(planes []r3.Vec, magnitude float64, seed uint64) []r3.Vec {
	rng := newRand(seed)
	return jitter(planes, magnitude, rng)
}

func jitter(planes []r3.Vec, magnitude float64, rng *rand.Rand) []r3.Vec {
	out := make([]r3.Vec, len(planes))
	for i, p := range planes {
		cent := (rng.Float64() - 0.5) * 2
		out[i] = r3.Scale(1+cent*magnitude, p)
	}
	return out
}

// Recenter re-expresses planes relative to center, which must lie strictly
// inside every half-space.
func Recenter(planes []r3.Vec, center r3.Vec) ([]r3.Vec, error) {
	out := make([]r3.Vec, len(planes))
	for i, p := range planes {
		if r3.Dot(p, center) >= r3.Dot(p, p) {
			return nil, fmt.Errorf("figure: center %v is outside plane %d", center, i)
		}
		// Casting along the normal lands on the foot of the perpendicular.
		hit, ok := crystal.RayPlane(center, p, p, p, crystal.RayLimits{})
		if !ok {
			return nil, fmt.Errorf("figure: plane %d is degenerate", i)
		}
		out[i] = r3.Sub(hit, center)
	}
	return out, nil
}

// FromFaces derives a figure from a polygon mesh: one plane per face,
// along the face normal, through the face centre. Faces are index loops into
// vertices and must wind counter-clockwise seen from outside.
func FromFaces(vertices []r3.Vec, faces [][]int) ([]r3.Vec, error) {
	out := make([]r3.Vec, 0, len(faces))
	for fi, loop := range faces {
		if len(loop) < 3 {
			return nil, fmt.Errorf("figure: face %d has %d vertices", fi, len(loop))
		}
		for _, vi := range loop {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf("figure: face %d references vertex %d of %d", fi, vi, len(vertices))
			}
		}
		var normal, center r3.Vec
		for i, vi := range loop {
			next := vertices[loop[(i+1)%len(loop)]]
			normal = r3.Add(normal, r3.Cross(vertices[vi], next))
			center = r3.Add(center, vertices[vi])
		}
		if r3.Norm(normal) == 0 {
			return nil, fmt.Errorf("figure: face %d is degenerate", fi)
		}
		normal = r3.Unit(normal)
		center = r3.Scale(1/float64(len(loop)), center)
		d := r3.Dot(normal, center)
		if d <= 0 {
			return nil, fmt.Errorf("figure: face %d does not face away from the origin", fi)
		}
		out = append(out, r3.Scale(d, normal))
	}
	return out, nil
}

// Cells returns one figure per site: the Voronoi cell of that site among
// all sites, clipped to a cube of half-size bound around it. Each figure's
// Origin is its site.
func Cells(sites []r3.Vec, bound float64) []Figure {
	out := make([]Figure, 0, len(sites))
	for i, origin := range sites {
		planes := Cube(bound)
		for j, other := range sites {
			if i == j || other == origin {
				continue
			}
			planes = append(planes, r3.Scale(0.5, r3.Sub(other, origin)))
		}
		out = append(out, Figure{Name: fmt.Sprintf("cell-%d", i), Origin: origin, Planes: planes})
	}
	return out
}

// Cluster generates chunks groups of perChunk jittered copies of planes.
// Each group shares a random orientation and uniform scale.
func Cluster(planes []r3.Vec, chunks, perChunk int, magnitude float64, seed uint64) []Figure {
	rng := newRand(seed)
	var out []Figure
	for c := 0; c < chunks; c++ {
		// Quaternion (1, i, j, k) with i, j, k in [0, 4).
		axis := r3.Vec{X: rng.Float64() * 4, Y: rng.Float64() * 4, Z: rng.Float64() * 4}
		norm := math.Sqrt(1 + r3.Norm2(axis))
		angle := 2 * math.Acos(1/norm)
		scale := 1 + (rng.Float64()-0.5)*magnitude

		for d := 0; d < perChunk; d++ {
			jittered := jitter(planes, magnitude, rng)
			for i, p := range jittered {
				if axis != (r3.Vec{}) {
					p = r3.Rotate(p, angle, r3.Unit(axis))
				}
				jittered[i] = r3.Scale(scale, p)
			}
			out = append(out, Figure{Name: fmt.Sprintf("chunk-%d-%d", c, d), Planes: jittered})
		}
	}
	return out
}
