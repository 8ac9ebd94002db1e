package figure

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// phi is the golden ratio.
var phi = (1 + math.Sqrt(5)) / 2

// along scales each direction to length d.
func along(d float64, dirs ...r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(dirs))
	for i, v := range dirs {
		out[i] = r3.Scale(d, r3.Unit(v))
	}
	return out
}

// signs expands v into every sign combination of its non-zero components.
func signs(v r3.Vec) []r3.Vec {
	out := []r3.Vec{v}
	flip := func(get func(r3.Vec) float64, set func(*r3.Vec)) {
		if get(v) == 0 {
			return
		}
		n := len(out)
		for _, w := range out[:n] {
			set(&w)
			out = append(out, w)
		}
	}
	flip(func(v r3.Vec) float64 { return v.X }, func(w *r3.Vec) { w.X = -w.X })
	flip(func(v r3.Vec) float64 { return v.Y }, func(w *r3.Vec) { w.Y = -w.Y })
	flip(func(v r3.Vec) float64 { return v.Z }, func(w *r3.Vec) { w.Z = -w.Z })
	return out
}

// Cube returns the six planes of an axis-aligned cube whose faces are d
// from the origin.
func Cube(d float64) []r3.Vec {
	return Box(2*d, 2*d, 2*d)
}

// Box returns the six planes of an axis-aligned box with the given full
// dimensions, centred on the origin.
func Box(x, y, z float64) []r3.Vec {
	return []r3.Vec{
		{X: x / 2}, {X: -x / 2},
		{Y: y / 2}, {Y: -y / 2},
		{Z: z / 2}, {Z: -z / 2},
	}
}

// Tetrahedron returns a regular tetrahedron with faces d from the origin.
func Tetrahedron(d float64) []r3.Vec {
	return along(d,
		r3.Vec{X: 1, Y: 1, Z: 1},
		r3.Vec{X: 1, Y: -1, Z: -1},
		r3.Vec{X: -1, Y: 1, Z: -1},
		r3.Vec{X: -1, Y: -1, Z: 1},
	)
}

// Octahedron returns a regular octahedron with faces d from the origin.
func Octahedron(d float64) []r3.Vec {
	return along(d, signs(r3.Vec{X: 1, Y: 1, Z: 1})...)
}

// Dodecahedron returns a regular dodecahedron with faces d from the origin.
func Dodecahedron(d float64) []r3.Vec {
	var dirs []r3.Vec
	dirs = append(dirs, signs(r3.Vec{Y: 1, Z: phi})...)
	dirs = append(dirs, signs(r3.Vec{X: 1, Y: phi})...)
	dirs = append(dirs, signs(r3.Vec{X: phi, Z: 1})...)
	return along(d, dirs...)
}

// Icosahedron returns a regular icosahedron with faces d from the origin.
func Icosahedron(d float64) []r3.Vec {
	var dirs []r3.Vec
	dirs = append(dirs, signs(r3.Vec{X: 1, Y: 1, Z: 1})...)
	dirs = append(dirs, signs(r3.Vec{Y: 1 / phi, Z: phi})...)
	dirs = append(dirs, signs(r3.Vec{X: 1 / phi, Y: phi})...)
	dirs = append(dirs, signs(r3.Vec{X: phi, Z: 1 / phi})...)
	return along(d, dirs...)
}

// Prism returns an n-sided prism along Z with side faces r from the axis
// and end caps h/2 from the origin.
func Prism(n int, r, h float64) []r3.Vec {
	out := make([]r3.Vec, 0, n+2)
	for k := 0; k < n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		out = append(out, r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a)})
	}
	return append(out, r3.Vec{Z: h / 2}, r3.Vec{Z: -h / 2})
}

// Bipyramid returns an n-sided bipyramid with its equator polygon on a
// circle of radius r and its apexes h/2 above and below the origin.
func Bipyramid(n int, r, h float64) []r3.Vec {
	out := make([]r3.Vec, 0, 2*n)
	for _, z := range []float64{h / 2, -h / 2} {
		apex := r3.Vec{Z: z}
		for k := 0; k < n; k++ {
			a0 := 2 * math.Pi * float64(k) / float64(n)
			a1 := 2 * math.Pi * float64(k+1) / float64(n)
			e0 := r3.Vec{X: r * math.Cos(a0), Y: r * math.Sin(a0)}
			e1 := r3.Vec{X: r * math.Cos(a1), Y: r * math.Sin(a1)}
			out = append(out, planeThrough(apex, e0, e1))
		}
	}
	return out
}

// planeThrough returns the plane vector of the plane through a, b and c,
// oriented away from the origin. The origin must not lie on the plane.
func planeThrough(a, b, c r3.Vec) r3.Vec {
	n := r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
	d := r3.Dot(n, a)
	if d < 0 {
		n, d = r3.Scale(-1, n), -d
	}
	return r3.Scale(d, n)
}
