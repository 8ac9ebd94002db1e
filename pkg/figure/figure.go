// Package figure builds the plane sets ("figures") that crystals are grown
// from: presets, figures taken from existing polygon meshes, and randomised
// variants. All randomness in the module lives here, behind explicit seeds,
// so reconstruction itself stays deterministic.
package figure

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Figure is a named plane set. Each plane vector is the outward normal
// scaled to the plane's distance from Origin.
//
// Clip, when set, is a second plane set in the same frame; the built solid
// is the intersection of both. Rotation holds Euler angles in degrees about
// X, Y and Z, applied about the plane frame's origin before the solid is
// moved to Origin.
type Figure struct {
	Name     string   `json:"name" yaml:"name"`
	Origin   r3.Vec   `json:"origin" yaml:"-"`
	Rotation r3.Vec   `json:"rotation" yaml:"-"`
	Planes   []r3.Vec `json:"planes" yaml:"-"`
	Clip     []r3.Vec `json:"clip,omitempty" yaml:"-"`
}

// Clone returns a deep copy of f.
func (f Figure) Clone() Figure {
	f.Planes = append([]r3.Vec(nil), f.Planes...)
	if f.Clip != nil {
		f.Clip = append([]r3.Vec(nil), f.Clip...)
	}
	return f
}

// Library is an ordered collection of uniquely named figures. It is built
// once per evaluation and not mutated afterwards.
type Library struct {
	figures []Figure
	index   map[string]int
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{index: make(map[string]int)}
}

// Add appends f. Names must be unique and non-empty.
func (l *Library) Add(f Figure) error {
	if f.Name == "" {
		return fmt.Errorf("figure: empty name")
	}
	if _, ok := l.index[f.Name]; ok {
		return fmt.Errorf("figure: duplicate name %q", f.Name)
	}
	l.index[f.Name] = len(l.figures)
	l.figures = append(l.figures, f)
	return nil
}

// Lookup returns the figure with the given name.
func (l *Library) Lookup(name string) (Figure, bool) {
	i, ok := l.index[name]
	if !ok {
		return Figure{}, false
	}
	return l.figures[i], true
}

// Figures returns the figures in insertion order.
func (l *Library) Figures() []Figure {
	if l == nil {
		return nil
	}
	return l.figures
}

// Len returns the number of figures.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.figures)
}
