package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// testCells keeps marching cubes fast in tests.
const testCells = 40

func mustPolyhedron(t *testing.T, k *SdfxKernel, planes []r3.Vec) kernel.Solid {
	t.Helper()
	s, err := k.Polyhedron(planes)
	if err != nil {
		t.Fatalf("Polyhedron() error = %v", err)
	}
	return s
}

func TestEvaluate(t *testing.T) {
	k := NewWithCells(testCells)
	s := mustPolyhedron(t, k, figure.Cube(1))
	h := unwrap(s)

	tests := []struct {
		name string
		p    v3.Vec
		want float64
	}{
		{"center", v3.Vec{}, -1},
		{"on face", v3.Vec{X: 1}, 0},
		{"inside near face", v3.Vec{Z: 0.75}, -0.25},
		{"outside", v3.Vec{Y: -3}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Evaluate(tt.p); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPolyhedron(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(mustPolyhedron(t, k, figure.Dodecahedron(10)))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	t.Logf("dodecahedron triangle count: %d", triCount)
}

func TestPolyhedronErrors(t *testing.T) {
	k := New()
	if _, err := k.Polyhedron(nil); err == nil {
		t.Error("expected error for empty plane set")
	}
	if _, err := k.Polyhedron([]r3.Vec{{X: 1}, {X: -1}}); err == nil {
		t.Error("expected error for unbounded slab")
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := mustPolyhedron(t, k, figure.Box(100, 50, 25))
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-50, -25, -12.5}
	expectMax := [3]float64{50, 25, 12.5}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := mustPolyhedron(t, k, figure.Cube(5))
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// Translated cube(5) by (100,200,300) should be centered at (100,200,300).
	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestIntersection(t *testing.T) {
	k := NewWithCells(testCells)
	a := mustPolyhedron(t, k, figure.Cube(50))
	b := k.Translate(mustPolyhedron(t, k, figure.Octahedron(50)), 50, 0, 0)
	inter := k.Intersection(a, b)
	mesh, err := k.ToMesh(inter)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
	t.Logf("intersection triangle count: %d", mesh.TriangleCount())
}

func TestRotate(t *testing.T) {
	k := New()
	box := mustPolyhedron(t, k, figure.Box(100, 10, 10))

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}
