package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestE2EGemsExample exercises the full pipeline: script source → engine →
// figure library → tessellate → meshes.
func TestE2EGemsExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/gems.crystal")
	if err != nil {
		t.Fatalf("failed to read gems.crystal: %v", err)
	}

	result := app.Evaluate(string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	expectedFaces := map[string]int{
		"cube":   6,
		"octa":   8,
		"dodeca": 12,
		"icosa":  20,
		"spire":  12,
		"cut":    7,
		"lens":   10,
	}
	if len(result.Meshes) != len(expectedFaces) {
		t.Fatalf("expected %d meshes, got %d", len(expectedFaces), len(result.Meshes))
	}

	seen := map[string]bool{}
	for _, m := range result.Meshes {
		want, ok := expectedFaces[m.Name]
		if !ok {
			t.Errorf("unexpected crystal name: %q", m.Name)
			continue
		}
		seen[m.Name] = true

		if m.Faces != want {
			t.Errorf("crystal %q: expected %d faces, got %d", m.Name, want, m.Faces)
		}
		// Each mesh must have non-empty geometry.
		if len(m.Vertices) == 0 {
			t.Errorf("crystal %q: no vertices", m.Name)
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("crystal %q: %d normals for %d vertex floats", m.Name, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices) == 0 || len(m.Indices)%3 != 0 {
			t.Errorf("crystal %q: bad index count %d", m.Name, len(m.Indices))
		}

		// Must have a color assigned.
		if m.Color == "" {
			t.Errorf("crystal %q: no color assigned", m.Name)
		}
	}

	for name := range expectedFaces {
		if !seen[name] {
			t.Errorf("missing mesh for crystal %q", name)
		}
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(defcrystal \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleCrystal ensures a minimal single-crystal source renders one mesh.
func TestE2ESingleCrystal(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "gem" (octahedron 1))`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "gem" {
		t.Errorf("expected crystal name 'gem', got %q", result.Meshes[0].Name)
	}
	// 8 triangles, 3 vertices each, 3 floats per vertex.
	if got := len(result.Meshes[0].Vertices); got != 8*3*3 {
		t.Errorf("expected %d vertex floats, got %d", 8*3*3, got)
	}
}

// TestE2EShardsExample builds the generated clusters and cells.
func TestE2EShardsExample(t *testing.T) {
	result := NewApp().EvaluateFile("examples/shards.crystal")

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	// 2 chunks of 3 shards plus 4 cells.
	if len(result.Meshes) != 10 {
		t.Fatalf("expected 10 meshes, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "shard/chunk-0-0" {
		t.Errorf("expected first mesh 'shard/chunk-0-0', got %q", result.Meshes[0].Name)
	}
	for _, m := range result.Meshes[:6] {
		if m.Faces != 12 {
			t.Errorf("shard %q: expected 12 faces, got %d", m.Name, m.Faces)
		}
	}
}

// TestE2EPlaneFile loads a YAML plane file instead of a script.
func TestE2EPlaneFile(t *testing.T) {
	result := NewApp().EvaluateFile("examples/rhombic.yaml")

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	if m := result.Meshes[0]; m.Name != "rhombic" || m.Faces != 12 {
		t.Errorf("expected rhombic with 12 faces, got %q with %d", m.Name, m.Faces)
	}
	if m := result.Meshes[1]; m.Name != "wedge" || m.Faces != 5 {
		t.Errorf("expected wedge with 5 faces, got %q with %d", m.Name, m.Faces)
	}
}

func TestE2EMissingFile(t *testing.T) {
	result := NewApp().EvaluateFile(filepath.Join(t.TempDir(), "nope.crystal"))

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error for a missing file, got %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}
