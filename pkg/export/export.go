// Package export writes tessellated crystals to files: STL for printing,
// DXF wireframes for CAD, SVG previews, and the raw mesh JSON the App
// binding returns.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/crystal/pkg/kernel"
)

// Format is an output file format.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatSVG  Format = "svg"
	FormatDXF  Format = "dxf"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatSTL, FormatSVG, FormatDXF, FormatJSON}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Write saves meshes to path in the given format.
func Write(path string, format Format, meshes []*kernel.Mesh) error {
	switch format {
	case FormatSTL:
		return STL(path, meshes)
	case FormatDXF:
		return DXF(path, meshes)
	case FormatSVG, FormatJSON:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if format == FormatSVG {
			err = SVG(f, meshes, SVGOptions{})
		} else {
			err = JSON(f, meshes)
		}
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: %w", cerr)
		}
		return err
	}
	return fmt.Errorf("export: unsupported format %q", format)
}

// JSON writes meshes as an indented JSON array.
func JSON(w io.Writer, meshes []*kernel.Mesh) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meshes); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}
