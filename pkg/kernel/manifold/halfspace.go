package manifold

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// halfSpaceAngles returns the Y and Z Euler angles, in degrees, that turn
// +Z onto the direction of n. Rotating about X is never needed.
func halfSpaceAngles(n r3.Vec) (y, z float64) {
	u := r3.Unit(n)
	theta := math.Acos(math.Max(-1, math.Min(1, u.Z)))
	phi := math.Atan2(u.Y, u.X)
	return theta * 180.0 / math.Pi, phi * 180.0 / math.Pi
}

// clipExtent returns the edge length of the slab blocks used to cut a
// solid whose corners are points. Each block must cover the whole solid
// from any side.
func clipExtent(points []r3.Vec) float64 {
	r := 1.0
	for _, p := range points {
		r = math.Max(r, r3.Norm(p))
	}
	return 4 * r
}
