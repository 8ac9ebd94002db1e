package tessellate_test

import (
	"strings"
	"testing"

	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/kernel"
	"github.com/chazu/crystal/pkg/kernel/facet"
	"github.com/chazu/crystal/pkg/kernel/sdfx"
	"github.com/chazu/crystal/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r3"
)

// newKernel returns a fresh exact kernel for testing.
func newKernel() kernel.Kernel {
	return facet.New()
}

// makeLibrary builds a library from figures, failing the test on
// duplicate names.
func makeLibrary(t *testing.T, figs ...figure.Figure) *figure.Library {
	t.Helper()
	lib := figure.NewLibrary()
	for _, f := range figs {
		if err := lib.Add(f); err != nil {
			t.Fatalf("Add(%q): %v", f.Name, err)
		}
	}
	return lib
}

func TestSingleCrystal(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{Name: "gem", Planes: figure.Dodecahedron(10)})

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.Name != "gem" {
		t.Errorf("expected Name %q, got %q", "gem", m.Name)
	}
	if m.Faces != 12 {
		t.Errorf("expected 12 faces, got %d", m.Faces)
	}
	if m.TriangleCount() != 36 {
		t.Errorf("expected 36 triangles, got %d", m.TriangleCount())
	}
}

func TestLibraryOrder(t *testing.T) {
	lib := makeLibrary(t,
		figure.Figure{Name: "tetra", Planes: figure.Tetrahedron(1)},
		figure.Figure{Name: "cube", Planes: figure.Cube(1)},
		figure.Figure{Name: "octa", Planes: figure.Octahedron(1)},
	)

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"tetra", "cube", "octa"} {
		if meshes[i].Name != want {
			t.Errorf("mesh %d: expected %q, got %q", i, want, meshes[i].Name)
		}
	}
}

func TestCrystalAtOrigin(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{
		Name:   "placed",
		Origin: r3.Vec{X: 200, Y: 100, Z: 50},
		Planes: figure.Box(100, 50, 10),
	})

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	min, max := meshes[0].Bounds()
	wantMin := [3]float32{150, 75, 45}
	wantMax := [3]float32{250, 125, 55}
	for i := 0; i < 3; i++ {
		if abs(min[i]-wantMin[i]) > 1e-3 || abs(max[i]-wantMax[i]) > 1e-3 {
			t.Errorf("axis %d: bounds %.3f..%.3f, want %.0f..%.0f", i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
}

func TestCrystalRotation(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{
		Name:     "turned",
		Origin:   r3.Vec{X: 10},
		Rotation: r3.Vec{Z: 90},
		Planes:   figure.Box(4, 2, 1),
	})

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	// Quarter turn about Z swaps the X and Y extents, then moves to Origin.
	min, max := meshes[0].Bounds()
	wantMin := [3]float32{9, -2, -0.5}
	wantMax := [3]float32{11, 2, 0.5}
	for i := 0; i < 3; i++ {
		if abs(min[i]-wantMin[i]) > 1e-3 || abs(max[i]-wantMax[i]) > 1e-3 {
			t.Errorf("axis %d: bounds %.3f..%.3f, want %.1f..%.1f", i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
}

func TestCrystalClip(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{
		Name:   "slice",
		Planes: figure.Cube(1),
		Clip:   figure.Box(4, 4, 1),
	})

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}

	min, max := meshes[0].Bounds()
	wantMin := [3]float32{-1, -1, -0.5}
	wantMax := [3]float32{1, 1, 0.5}
	for i := 0; i < 3; i++ {
		if abs(min[i]-wantMin[i]) > 1e-3 || abs(max[i]-wantMax[i]) > 1e-3 {
			t.Errorf("axis %d: bounds %.3f..%.3f, want %.1f..%.1f", i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
	// Six faces survive: the clip caps replace the cube's top and bottom,
	// and its four sides lie outside the cube.
	if got := meshes[0].Faces; got != 6 {
		t.Errorf("faces = %d, want 6", got)
	}
}

func TestCrystalClipUnboundedFails(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{
		Name:   "bad-clip",
		Planes: figure.Cube(1),
		Clip:   []r3.Vec{{Z: 1}, {Z: -1}},
	})

	_, err := tessellate.Tessellate(lib, newKernel())
	if err == nil {
		t.Fatal("expected error for unbounded clip")
	}
	if !strings.Contains(err.Error(), "clip") {
		t.Errorf("error %q does not mention clip", err)
	}
}

func TestSampledKernel(t *testing.T) {
	lib := makeLibrary(t, figure.Figure{
		Name:   "shelf",
		Origin: r3.Vec{X: 200, Y: 100, Z: 50},
		Planes: figure.Box(100, 50, 10),
	})

	meshes, err := tessellate.Tessellate(lib, sdfx.NewWithCells(40))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}

	// Centroid of the sampled surface should sit near the origin.
	var cx, cy, cz float64
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		cx += float64(m.Vertices[i*3])
		cy += float64(m.Vertices[i*3+1])
		cz += float64(m.Vertices[i*3+2])
	}
	cx /= float64(n)
	cy /= float64(n)
	cz /= float64(n)

	// Use a generous tolerance since marching cubes is approximate.
	const tol = 20.0
	if abs(float32(cx-200)) > tol || abs(float32(cy-100)) > tol || abs(float32(cz-50)) > tol {
		t.Errorf("centroid = (%.1f, %.1f, %.1f), expected near (200, 100, 50)", cx, cy, cz)
	}
}

func TestEmptyLibrary(t *testing.T) {
	meshes, err := tessellate.Tessellate(figure.NewLibrary(), newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}

	meshes, err = tessellate.Tessellate(nil, newKernel())
	if err != nil || meshes != nil {
		t.Fatalf("nil library: got %v, %v", meshes, err)
	}
}

func TestUnboundedCrystalFails(t *testing.T) {
	lib := makeLibrary(t,
		figure.Figure{Name: "ok", Planes: figure.Cube(1)},
		figure.Figure{Name: "slab", Planes: []r3.Vec{{Z: 1}, {Z: -1}}},
	)

	_, err := tessellate.Tessellate(lib, newKernel())
	if err == nil {
		t.Fatal("expected error for unbounded crystal")
	}
	if !strings.Contains(err.Error(), `"slab"`) {
		t.Errorf("error should name the crystal, got: %v", err)
	}
}

func TestSkippedFacesBecomeWarnings(t *testing.T) {
	// A square tube capped on one end only: the side faces never close.
	planes := []r3.Vec{{Z: 0.5}, {X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	lib := makeLibrary(t, figure.Figure{Name: "tube", Planes: planes})

	meshes, err := tessellate.Tessellate(lib, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes[0].Warnings) == 0 {
		t.Error("expected warnings for skipped faces")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
