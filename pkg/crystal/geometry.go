package crystal

import "gonum.org/v1/gonum/spatial/r3"

// ProjectToPlane returns the orthogonal projection of point onto the plane
// through planePoint with the given normal. The normal need not be unit
// length but must be non-zero.
func ProjectToPlane(point, planePoint, normal r3.Vec) r3.Vec {
	k := r3.Dot(r3.Sub(planePoint, point), normal) / r3.Dot(normal, normal)
	return r3.Add(point, r3.Scale(k, normal))
}

// RayLimits restricts which intersections RayPlane accepts.
type RayLimits struct {
	Forward bool // reject hits at or behind the ray origin
	Length  bool // reject hits whose parameter exceeds the length of dir
	Facing  bool // reject planes whose normal does not point along dir
}

// RayPlane intersects the ray origin+t*dir with the plane through planePoint.
// It reports false when the ray is parallel to the plane or when the hit is
// rejected by lim. The parallel test is an exact zero comparison.
func RayPlane(origin, dir, planePoint, normal r3.Vec, lim RayLimits) (r3.Vec, bool) {
	denom := r3.Dot(normal, dir)
	if denom == 0 {
		return r3.Vec{}, false
	}
	if lim.Facing && denom <= 0 {
		return r3.Vec{}, false
	}

	t := -r3.Dot(normal, r3.Sub(origin, planePoint)) / denom
	if lim.Forward && t <= 0 {
		return r3.Vec{}, false
	}
	if lim.Length && t > r3.Norm(dir) {
		return r3.Vec{}, false
	}
	return r3.Add(origin, r3.Scale(t, dir)), true
}
