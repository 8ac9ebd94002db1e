package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/crystal/pkg/engine"
	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/kernel"
	"github.com/chazu/crystal/pkg/kernel/facet"
	"github.com/chazu/crystal/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to crystals.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine, a geometry kernel and tessellation together.
// The CLI drives it; its Evaluate result is JSON-ready for any front end.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format returned by Evaluate.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Faces    int       `json:"faces"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the exact facet kernel.
func NewApp() *App {
	return NewAppWithKernel(facet.New())
}

// NewAppWithKernel creates a new App that builds solids with k.
func NewAppWithKernel(k kernel.Kernel) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// isPlaneFile reports whether path names a YAML or JSON plane file rather
// than a script.
func isPlaneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Load reads a crystal library from a plane file or a figure script.
// Script errors come back as EvalErrorData; the error return is for
// unreadable files and fatal engine failures.
func (a *App) Load(path string) (*figure.Library, []EvalErrorData, error) {
	if isPlaneFile(path) {
		lib, err := figure.Load(path)
		if err != nil {
			return nil, nil, err
		}
		return lib, nil, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a.evaluate(string(src))
}

// evaluate runs a script through the engine.
func (a *App) evaluate(source string) (*figure.Library, []EvalErrorData, error) {
	lib, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, nil, err
	}
	var errs []EvalErrorData
	for _, e := range evalErrs {
		errs = append(errs, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	return lib, errs, nil
}

// Build validates every crystal in lib and tessellates them. Validation
// warnings are returned alongside the meshes.
func (a *App) Build(lib *figure.Library) ([]*kernel.Mesh, []EvalErrorData, error) {
	var warnings []EvalErrorData
	for _, f := range lib.Figures() {
		for _, v := range figure.Validate(f.Planes) {
			if v.Severity == figure.SeverityError {
				return nil, warnings, fmt.Errorf("crystal %q: %w", f.Name, v)
			}
			warnings = append(warnings, EvalErrorData{Message: fmt.Sprintf("crystal %q: %v", f.Name, v)})
		}
	}
	for _, f := range lib.Figures() {
		if len(f.Clip) == 0 {
			continue
		}
		for _, v := range figure.Validate(f.Clip) {
			if v.Severity == figure.SeverityError {
				return nil, warnings, fmt.Errorf("crystal %q: clip: %w", f.Name, v)
			}
		}
	}

	meshes, err := tessellate.Tessellate(lib, a.kernel)
	if err != nil {
		return nil, warnings, err
	}
	for _, m := range meshes {
		for _, w := range m.Warnings {
			warnings = append(warnings, EvalErrorData{Message: fmt.Sprintf("crystal %q: %s", m.Name, w)})
		}
	}
	return meshes, warnings, nil
}

// Evaluate takes figure script source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a crystal library.
	lib, evalErrs, err := a.evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}

	return a.finish(lib, result)
}

// EvaluateFile is Evaluate for a script or plane file on disk.
func (a *App) EvaluateFile(path string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	lib, evalErrs, err := a.Load(path)
	if err != nil {
		log.Printf("Load error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}
	return a.finish(lib, result)
}

// finish builds lib and converts the meshes into result.
func (a *App) finish(lib *figure.Library, result EvalResult) EvalResult {
	meshes, warnings, err := a.Build(lib)
	result.Warnings = append(result.Warnings, warnings...)
	if err != nil {
		log.Printf("Build error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "build failed: " + err.Error()})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Faces:    m.Faces,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}
