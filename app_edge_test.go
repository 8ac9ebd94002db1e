package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/crystal/pkg/kernel/sdfx"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
//    (TestE2EEmptySource already exists; this verifies additional invariants.)
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(defcrystal \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}

	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2ESyntaxErrorSingleLineMissingParen(t *testing.T) {
	app := NewApp()

	result := app.Evaluate("(+ 1 2")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for missing closing paren")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("error message should not be empty")
	}
}

// ---------------------------------------------------------------------------
// 3. Undefined crystal reference: (crystal "nonexistent") -> eval error.
// ---------------------------------------------------------------------------

func TestE2EUndefinedCrystalReference(t *testing.T) {
	app := NewApp()

	source := `
(defcrystal "base" (cube 1))
(defcrystal "capped" (planes (crystal "nonexistent") (plane 0 0 0.5)))
`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined crystal reference")
	}

	found := false
	for _, e := range result.Errors {
		if strings.Contains(e.Message, "nonexistent") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected error mentioning 'nonexistent', got: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

func TestE2EDuplicateCrystalName(t *testing.T) {
	app := NewApp()

	source := `
(defcrystal "gem" (cube 1))
(defcrystal "gem" (octahedron 1))
`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for duplicate crystal name")
	}
	if !strings.Contains(result.Errors[0].Message, "duplicate") {
		t.Errorf("expected error mentioning 'duplicate', got %q", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate plane sets: zero planes, negative sizes, open solids.
// ---------------------------------------------------------------------------

func TestE2EZeroPlane(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "z" (planes (cube 1) (plane 0 0 0)))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a zero plane")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2ENegativeDistance(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "neg" (cube -1))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a negative distance")
	}
}

func TestE2EUnboundedSolid(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "slab" (planes (plane 1 0 0) (plane -1 0 0)))`)

	if len(result.Errors) == 0 {
		t.Fatal("expected a build error for an unbounded solid")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
	if !strings.Contains(result.Errors[0].Message, "slab") {
		t.Errorf("expected error naming the crystal, got %q", result.Errors[0].Message)
	}
}

func TestE2EShadowedPlaneWarns(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "shadow" (planes (cube 1) (plane 2 0 0)))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the shadowed plane")
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Faces != 6 {
		t.Fatalf("expected one 6-faced mesh, got %+v", result.Meshes)
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid evaluation (debounce simulation): no panics, no data races.
//    Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluation(t *testing.T) {
	// zygomys has internal global state that is not safe for concurrent
	// sandbox creation, so calls are sequential. The engine mutex
	// serializes them in production anyway.
	app := NewApp()

	sources := []string{
		`(defcrystal "a" (cube 1))`,
		`(defcrystal "b" (octahedron 2))`,
		`(+ 1 2)`,
		``,
		`(defcrystal "c" (dodecahedron 1))`,
		`(defcrystal "d" (jitter (icosahedron 1) :magnitude 0.1 :seed 3))`,
		`(+ 100 200)`,
		``,
		`(defcrystal "e" (prism 5 1 2))`,
		`(defcrystal "f" (box 3 2 1))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly. The engine must
	// recover cleanly between error and success states.
	app := NewApp()

	sources := []string{
		`(defcrystal "ok" (cube 1))`,
		`(defcrystal "broken"`,
		``,
		`(crystal "missing")`,
		`(defcrystal "also-ok" (tetrahedron 1))`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(defcrystal "fine" (bipyramid 4 1 2))`,
		`(undefined-func 1 2 3)`,
		`(defcrystal "last" (octahedron 1))`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	// The last source is valid and must still build.
	result := app.Evaluate(sources[len(sources)-1])
	if len(result.Errors) > 0 || len(result.Meshes) != 1 {
		t.Errorf("expected a clean build after errors, got %d errors and %d meshes",
			len(result.Errors), len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 6. Large and small sizes: build without crash.
// ---------------------------------------------------------------------------

func TestE2ELargeCrystal(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "huge" (dodecahedron 100000))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors for large crystal: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh for large crystal, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Faces != 12 {
		t.Errorf("expected 12 faces, got %d", result.Meshes[0].Faces)
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "precise" (box 1.234 0.789 0.127))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 || result.Meshes[0].Faces != 6 {
		t.Fatalf("expected one 6-faced mesh, got %+v", result.Meshes)
	}
}

// ---------------------------------------------------------------------------
// 7. Comments and whitespace only -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()

	source := `
;; This is a comment
;; Another comment
; And another
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for comments-only source, got %d", len(result.Meshes))
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n   \n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for whitespace-only source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for whitespace-only source, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 8. Nested expressions: def with arithmetic, then use in a preset.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := NewApp()

	source := `
(def base 4)
(def margin 0.5)
(def inner (- base (* 2 margin)))
(defcrystal "inner-gem" (octahedron (/ inner 2)))
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "inner-gem" {
		t.Errorf("expected crystal name 'inner-gem', got %q", result.Meshes[0].Name)
	}
}

func TestE2EDefcrystalMissingBody(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(defcrystal "oops")`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for defcrystal with no planes")
	}
}

// ---------------------------------------------------------------------------
// 9. Palette wrapping and alternate kernels.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := NewApp()

	// More crystals than the palette has colors.
	var b strings.Builder
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&b, "(defcrystal \"g%d\" (tetrahedron 1) :origin (vec3 %d 0 0))\n", i, i*3)
	}
	result := app.Evaluate(b.String())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 9 {
		t.Fatalf("expected 9 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("mesh %q should have a color assigned (palette wrapping)", m.Name)
		}
	}
	if result.Meshes[0].Color != result.Meshes[len(colorPalette)].Color {
		t.Errorf("expected palette to wrap after %d colors", len(colorPalette))
	}
}

func TestE2ESdfxKernel(t *testing.T) {
	app := NewAppWithKernel(sdfx.NewWithCells(40))
	result := app.Evaluate(`(defcrystal "gem" (octahedron 1))`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if len(result.Meshes[0].Indices) == 0 {
		t.Error("sdfx mesh should have triangles")
	}
}
