package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/crystal/pkg/figure"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlanes wraps a plane set. Builtins that take planes accept it, a
// single vec3, or a list of either.
type sexpPlanes struct {
	planes []r3.Vec
}

func (p *sexpPlanes) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(planes <%d>)", len(p.planes))
}
func (p *sexpPlanes) Type() *zygo.RegisteredType { return nil }

// sexpFigureRef names a figure already added to the library.
type sexpFigureRef struct {
	name string
}

func (f *sexpFigureRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(crystal %q)", f.name)
}
func (f *sexpFigureRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// number reads a numeric argument given either as keyword or at position
// pos, falling back to def when neither is present.
func (a kwArgs) number(key string, pos int, def float64) (float64, error) {
	if v, ok := a.kw[key]; ok {
		return toFloat64(v)
	}
	if pos >= 0 && pos < len(a.positional) {
		return toFloat64(a.positional[pos])
	}
	return def, nil
}

// magnitude reads a jitter magnitude, default 0.1. Values of 1 or more
// could push a plane through the origin and flip its half-space.
func (a kwArgs) magnitude(pos int) (float64, error) {
	m, err := a.number("magnitude", pos, 0.1)
	if err != nil {
		return 0, fmt.Errorf("magnitude: %w", err)
	}
	if m < 0 || m >= 1 {
		return 0, fmt.Errorf("magnitude must be in [0, 1), got %g", m)
	}
	return m, nil
}

// seed reads a random seed, default 0. It must be a whole, non-negative
// number that fits in a uint64.
func (a kwArgs) seed(pos int) (uint64, error) {
	f, err := a.number("seed", pos, 0)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if f < 0 || f != math.Trunc(f) || f >= 1<<64 {
		return 0, fmt.Errorf("seed must be a non-negative integer, got %g", f)
	}
	return uint64(f), nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPlanes flattens a plane set, a vec3, a figure reference, or a list of
// them into one plane slice.
func toPlanes(s zygo.Sexp, lib *figure.Library) ([]r3.Vec, error) {
	switch v := s.(type) {
	case *sexpPlanes:
		return append([]r3.Vec(nil), v.planes...), nil
	case *sexpVec3:
		return []r3.Vec{v.vec}, nil
	case *sexpFigureRef:
		f, ok := lib.Lookup(v.name)
		if !ok {
			return nil, fmt.Errorf("no crystal named %q", v.name)
		}
		return f.Clone().Planes, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected planes, got %T (%s)", s, s.SexpString(nil))
	}
	var out []r3.Vec
	for i, item := range items {
		ps, err := toPlanes(item, lib)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, ps...)
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// planesFn is the shape shared by the preset builtins.
type planesFn func(pa kwArgs) ([]r3.Vec, error)

// registerBuiltins installs all figure DSL builtins into a zygomys
// environment. defcrystal and friends add to lib as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, lib *figure.Library) {
	preset := func(name string, fn planesFn) {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			planes, err := fn(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpPlanes{planes: planes}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane 1 0 0)  or  (plane :normal (vec3 1 1 0) :distance 2)
	// -----------------------------------------------------------------------
	preset("plane", func(pa kwArgs) ([]r3.Vec, error) {
		if v, ok := pa.kw["normal"]; ok {
			n, err := toVec3(v)
			if err != nil {
				return nil, fmt.Errorf("normal: %w", err)
			}
			if n == (r3.Vec{}) {
				return nil, fmt.Errorf("normal: zero vector")
			}
			d, err := pa.number("distance", -1, r3.Norm(n))
			if err != nil {
				return nil, fmt.Errorf("distance: %w", err)
			}
			return []r3.Vec{r3.Scale(d, r3.Unit(n))}, nil
		}
		if len(pa.positional) != 3 {
			return nil, fmt.Errorf("expected 3 components or :normal, got %d arguments", len(pa.positional))
		}
		var c [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, err
			}
			c[i] = f
		}
		return []r3.Vec{{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// Presets: (cube 1) (box 4 2 1) (tetrahedron 1) (octahedron 1)
	// (dodecahedron 1) (icosahedron 1)
	// (prism :sides 6 :radius 1 :height 2) (bipyramid :sides 5 ...)
	// -----------------------------------------------------------------------
	regular := map[string]func(float64) []r3.Vec{
		"cube":         figure.Cube,
		"tetrahedron":  figure.Tetrahedron,
		"octahedron":   figure.Octahedron,
		"dodecahedron": figure.Dodecahedron,
		"icosahedron":  figure.Icosahedron,
	}
	for name, fn := range regular {
		preset(name, func(pa kwArgs) ([]r3.Vec, error) {
			d, err := pa.number("distance", 0, 1)
			if err != nil {
				return nil, fmt.Errorf("distance: %w", err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("distance must be positive, got %g", d)
			}
			return fn(d), nil
		})
	}

	preset("box", func(pa kwArgs) ([]r3.Vec, error) {
		var dims [3]float64
		for i, key := range []string{"x", "y", "z"} {
			f, err := pa.number(key, i, 0)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			if f <= 0 {
				return nil, fmt.Errorf("%s must be positive, got %g", key, f)
			}
			dims[i] = f
		}
		return figure.Box(dims[0], dims[1], dims[2]), nil
	})

	radial := map[string]func(int, float64, float64) []r3.Vec{
		"prism":     figure.Prism,
		"bipyramid": figure.Bipyramid,
	}
	for name, fn := range radial {
		preset(name, func(pa kwArgs) ([]r3.Vec, error) {
			sides, err := pa.number("sides", 0, 0)
			if err != nil {
				return nil, fmt.Errorf("sides: %w", err)
			}
			if sides < 3 || sides != float64(int(sides)) {
				return nil, fmt.Errorf("sides must be an integer of at least 3, got %g", sides)
			}
			r, err := pa.number("radius", 1, 1)
			if err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
			h, err := pa.number("height", 2, 2)
			if err != nil {
				return nil, fmt.Errorf("height: %w", err)
			}
			if r <= 0 || h <= 0 {
				return nil, fmt.Errorf("radius and height must be positive")
			}
			return fn(int(sides), r, h), nil
		})
	}

	// -----------------------------------------------------------------------
	// (planes (cube 1) (plane 0.8 0.8 0) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("planes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var out []r3.Vec
		for i, a := range args {
			ps, err := toPlanes(a, lib)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("planes: argument %d: %w", i, err)
			}
			out = append(out, ps...)
		}
		return &sexpPlanes{planes: out}, nil
	})

	// -----------------------------------------------------------------------
	// (jitter (dodecahedron 1) :magnitude 0.2 :seed 7)
	// -----------------------------------------------------------------------
	env.AddFunction("jitter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("jitter requires planes as first argument")
		}
		planes, err := toPlanes(pa.positional[0], lib)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("jitter: planes: %w", err)
		}
		mag, err := pa.magnitude(1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("jitter: %w", err)
		}
		seed, err := pa.seed(2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("jitter: %w", err)
		}
		return &sexpPlanes{planes: figure.Jitter(planes, mag, seed)}, nil
	})

	// -----------------------------------------------------------------------
	// (recenter (cube 1) (vec3 0.5 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("recenter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("recenter requires planes and a center, got %d arguments", len(args))
		}
		planes, err := toPlanes(args[0], lib)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("recenter: planes: %w", err)
		}
		c, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("recenter: center: %w", err)
		}
		out, err := figure.Recenter(planes, c)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("recenter: %w", err)
		}
		return &sexpPlanes{planes: out}, nil
	})

	// -----------------------------------------------------------------------
	// (scale (octahedron 1) 2.5)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires planes and a factor, got %d arguments", len(args))
		}
		planes, err := toPlanes(args[0], lib)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: planes: %w", err)
		}
		k, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		if k <= 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factor must be positive, got %g", k)
		}
		return &sexpPlanes{planes: figure.Scale(planes, k)}, nil
	})

	// -----------------------------------------------------------------------
	// (defcrystal "gem" (planes ...) :origin (vec3 10 0 0))
	// (defcrystal "gem" (octahedron 1) :clip (cube 0.8) :rotate (vec3 0 0 45))
	// -----------------------------------------------------------------------
	env.AddFunction("defcrystal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defcrystal requires a name and a plane expression")
		}
		fname, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcrystal: name: %w", err)
		}
		planes, err := toPlanes(pa.positional[1], lib)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcrystal %q: %w", fname, err)
		}
		fig := figure.Figure{Name: fname, Planes: planes}
		if v, ok := pa.kw["origin"]; ok {
			if fig.Origin, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defcrystal %q: origin: %w", fname, err)
			}
		}
		if v, ok := pa.kw["rotate"]; ok {
			if fig.Rotation, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defcrystal %q: rotate: %w", fname, err)
			}
		}
		if v, ok := pa.kw["clip"]; ok {
			if fig.Clip, err = toPlanes(v, lib); err != nil {
				return zygo.SexpNull, fmt.Errorf("defcrystal %q: clip: %w", fname, err)
			}
			if errs := figure.Validate(fig.Clip); figure.HasErrors(errs) {
				return zygo.SexpNull, fmt.Errorf("defcrystal %q: clip: %v", fname, errs[0])
			}
		}
		if errs := figure.Validate(planes); figure.HasErrors(errs) {
			return zygo.SexpNull, fmt.Errorf("defcrystal %q: %v", fname, errs[0])
		}
		if err := lib.Add(fig); err != nil {
			return zygo.SexpNull, fmt.Errorf("defcrystal: %w", err)
		}
		return &sexpFigureRef{name: fname}, nil
	})

	// -----------------------------------------------------------------------
	// (crystal "gem")
	// -----------------------------------------------------------------------
	env.AddFunction("crystal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("crystal requires a name argument")
		}
		fname, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("crystal: name: %w", err)
		}
		if _, ok := lib.Lookup(fname); !ok {
			return zygo.SexpNull, fmt.Errorf("crystal: no crystal named %q", fname)
		}
		return &sexpFigureRef{name: fname}, nil
	})

	// -----------------------------------------------------------------------
	// (defcells "cell" (list (vec3 0 0 0) (vec3 2 0 0)) :bound 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("defcells", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defcells requires a prefix and a list of sites")
		}
		prefix, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcells: prefix: %w", err)
		}
		items, err := sexpListToSlice(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcells: sites: %w", err)
		}
		sites := make([]r3.Vec, len(items))
		for i, item := range items {
			if sites[i], err = toVec3(item); err != nil {
				return zygo.SexpNull, fmt.Errorf("defcells: site %d: %w", i, err)
			}
		}
		bound, err := pa.number("bound", 2, 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcells: bound: %w", err)
		}
		return addAll(lib, prefix, figure.Cells(sites, bound))
	})

	// -----------------------------------------------------------------------
	// (defcluster "shard" (tetrahedron 1) :chunks 2 :per-chunk 3
	//             :magnitude 0.1 :seed 1)
	// -----------------------------------------------------------------------
	env.AddFunction("defcluster", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defcluster requires a prefix and a plane expression")
		}
		prefix, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcluster: prefix: %w", err)
		}
		planes, err := toPlanes(pa.positional[1], lib)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcluster: planes: %w", err)
		}
		var n [2]float64
		for i, key := range []string{"chunks", "per-chunk"} {
			if n[i], err = pa.number(key, -1, 1); err != nil {
				return zygo.SexpNull, fmt.Errorf("defcluster: %s: %w", key, err)
			}
		}
		if n[0] < 1 || n[1] < 1 {
			return zygo.SexpNull, fmt.Errorf("defcluster: chunks and per-chunk must be at least 1")
		}
		mag, err := pa.magnitude(-1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcluster: %w", err)
		}
		seed, err := pa.seed(-1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcluster: %w", err)
		}
		figs := figure.Cluster(planes, int(n[0]), int(n[1]), mag, seed)
		return addAll(lib, prefix, figs)
	})
}

// addAll adds generated figures under prefix and returns the number added.
func addAll(lib *figure.Library, prefix string, figs []figure.Figure) (zygo.Sexp, error) {
	for _, f := range figs {
		f.Name = prefix + "/" + f.Name
		if err := lib.Add(f); err != nil {
			return zygo.SexpNull, err
		}
	}
	return &zygo.SexpInt{Val: int64(len(figs))}, nil
}
