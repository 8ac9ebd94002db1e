package figure

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Format is a plane file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("figure: unknown plane file extension %q", filepath.Ext(path))
}

// fileFigure is the on-disk shape of a figure:
//
//	figures:
//	  - name: cube
//	    origin: [0, 0, 0]
//	    rotation: [0, 0, 45]
//	    planes: [[1, 0, 0], [-1, 0, 0], ...]
//	    clip: [[0.8, 0.8, 0], ...]
type fileFigure struct {
	Name     string      `json:"name" yaml:"name"`
	Origin   []float64   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Rotation []float64   `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Planes   [][]float64 `json:"planes" yaml:"planes"`
	Clip     [][]float64 `json:"clip,omitempty" yaml:"clip,omitempty"`
}

type file struct {
	Figures []fileFigure `json:"figures" yaml:"figures"`
}

func toVec(xs []float64) (r3.Vec, error) {
	if len(xs) != 3 {
		return r3.Vec{}, fmt.Errorf("expected 3 components, got %d", len(xs))
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}

// Load reads a plane file, choosing the format from its extension.
func Load(path string) (*Library, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("figure: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads a plane file from r.
func Decode(r io.Reader, format Format) (*Library, error) {
	var doc file
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("figure: decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("figure: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("figure: unsupported format %q", format)
	}

	lib := NewLibrary()
	for i, ff := range doc.Figures {
		fig := Figure{Name: ff.Name}
		if fig.Name == "" {
			fig.Name = fmt.Sprintf("figure-%d", i)
		}
		if ff.Origin != nil {
			o, err := toVec(ff.Origin)
			if err != nil {
				return nil, fmt.Errorf("figure %q: origin: %w", fig.Name, err)
			}
			fig.Origin = o
		}
		if ff.Rotation != nil {
			rot, err := toVec(ff.Rotation)
			if err != nil {
				return nil, fmt.Errorf("figure %q: rotation: %w", fig.Name, err)
			}
			fig.Rotation = rot
		}
		for j, p := range ff.Planes {
			v, err := toVec(p)
			if err != nil {
				return nil, fmt.Errorf("figure %q: plane %d: %w", fig.Name, j, err)
			}
			fig.Planes = append(fig.Planes, v)
		}
		for j, p := range ff.Clip {
			v, err := toVec(p)
			if err != nil {
				return nil, fmt.Errorf("figure %q: clip plane %d: %w", fig.Name, j, err)
			}
			fig.Clip = append(fig.Clip, v)
		}
		if err := lib.Add(fig); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

// Encode writes lib to w in the given format.
func Encode(w io.Writer, lib *Library, format Format) error {
	var doc file
	for _, f := range lib.Figures() {
		ff := fileFigure{Name: f.Name}
		if f.Origin != (r3.Vec{}) {
			ff.Origin = []float64{f.Origin.X, f.Origin.Y, f.Origin.Z}
		}
		if f.Rotation != (r3.Vec{}) {
			ff.Rotation = []float64{f.Rotation.X, f.Rotation.Y, f.Rotation.Z}
		}
		for _, p := range f.Planes {
			ff.Planes = append(ff.Planes, []float64{p.X, p.Y, p.Z})
		}
		for _, p := range f.Clip {
			ff.Clip = append(ff.Clip, []float64{p.X, p.Y, p.Z})
		}
		doc.Figures = append(doc.Figures, ff)
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("figure: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	return fmt.Errorf("figure: unsupported format %q", format)
}
