package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/chazu/crystal/pkg/crystal"
	"github.com/chazu/crystal/pkg/export"
	"github.com/chazu/crystal/pkg/figure"
	"github.com/chazu/crystal/pkg/hull"
	"github.com/chazu/crystal/pkg/kernel"
	"github.com/chazu/crystal/pkg/kernel/facet"
	"github.com/chazu/crystal/pkg/kernel/manifold"
	"github.com/chazu/crystal/pkg/kernel/sdfx"
	"github.com/chazu/crystal/pkg/weld"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	outPath     string
	formatName  string
	planeFormat string
	kernelName  string
	cells       int
	epsilon     float64
	weldTol     float64
	verify      bool
)

// newKernel builds the kernel selected on the command line.
func newKernel() (kernel.Kernel, error) {
	switch kernelName {
	case "facet":
		return &facet.FacetKernel{Epsilon: epsilon, Weld: weldTol, Verify: verify}, nil
	case "sdfx":
		return sdfx.NewWithCells(cells), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel %q, expected facet, sdfx or manifold", kernelName)
}

// outputFor resolves the output path and format from the flags and the
// input name.
func outputFor(input string) (string, export.Format, error) {
	var format export.Format
	var err error
	switch {
	case formatName != "":
		format, err = export.ParseFormat(formatName)
	case outPath != "":
		format, err = export.FormatForPath(outPath)
	default:
		format = export.FormatSTL
	}
	if err != nil {
		return "", "", err
	}
	path := outPath
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(format)
	}
	return path, format, nil
}

func printDiagnostics(w io.Writer, label string, items []EvalErrorData) {
	for _, e := range items {
		if e.Line > 0 {
			fmt.Fprintf(w, "%s (line %d): %s\n", label, e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "%s: %s\n", label, e.Message)
		}
	}
}

func build(cmd *cobra.Command, args []string) error {
	k, err := newKernel()
	if err != nil {
		return err
	}
	path, format, err := outputFor(args[0])
	if err != nil {
		return err
	}

	app := NewAppWithKernel(k)
	lib, evalErrs, err := app.Load(args[0])
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		printDiagnostics(cmd.ErrOrStderr(), "error", evalErrs)
		return fmt.Errorf("%s: %d script errors", args[0], len(evalErrs))
	}

	meshes, warnings, err := app.Build(lib)
	printDiagnostics(cmd.ErrOrStderr(), "warning", warnings)
	if err != nil {
		return err
	}
	if err := export.Write(path, format, meshes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d crystals to %s\n", len(meshes), path)
	return nil
}

func info(cmd *cobra.Command, args []string) error {
	lib, evalErrs, err := NewApp().Load(args[0])
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		printDiagnostics(cmd.ErrOrStderr(), "error", evalErrs)
		return fmt.Errorf("%s: %d script errors", args[0], len(evalErrs))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File: %s\n", args[0])
	fmt.Fprintf(w, "Crystals: %d\n", lib.Len())
	for _, f := range lib.Figures() {
		describe(w, f)
	}
	return nil
}

// describe prints the reconstruction summary of one crystal.
func describe(w io.Writer, f figure.Figure) {
	fmt.Fprintf(w, "\n%s\n", f.Name)
	fmt.Fprintf(w, "  planes:   %d\n", len(f.Planes))
	if len(f.Clip) > 0 {
		fmt.Fprintf(w, "  clip:     %d planes\n", len(f.Clip))
	}
	if f.Rotation != (r3.Vec{}) {
		fmt.Fprintf(w, "  rotation: %g %g %g\n", f.Rotation.X, f.Rotation.Y, f.Rotation.Z)
	}
	for _, v := range figure.Validate(f.Planes) {
		fmt.Fprintf(w, "  %v\n", v)
	}

	res, err := crystal.Assemble(f.Planes, crystal.Options{Epsilon: epsilon})
	if err != nil {
		fmt.Fprintf(w, "  failed:   %v\n", err)
		return
	}
	welded := weld.Weld(res.Mesh.Points, res.Mesh.Loops(), weldTol)
	fmt.Fprintf(w, "  label:    %s\n", res.Mesh.Label)
	fmt.Fprintf(w, "  faces:    %d (%d skipped)\n", res.Mesh.FaceCount(), len(res.Skipped()))
	fmt.Fprintf(w, "  vertices: %d\n", len(welded.Vertices))
	fmt.Fprintf(w, "  edges:    %d\n", len(welded.Edges()))
	fmt.Fprintf(w, "  euler:    %d\n", welded.EulerCharacteristic())
	for _, rep := range res.Skipped() {
		fmt.Fprintf(w, "  skipped:  plane %d: %v\n", rep.Plane, rep.Err)
	}
	for _, b := range res.Breaches {
		fmt.Fprintf(w, "  breach:   %v\n", b)
	}
	if verify {
		rep, err := hull.Verify(welded.Vertices, 0)
		switch {
		case err != nil:
			fmt.Fprintf(w, "  hull:     %v\n", err)
		case rep.Convex():
			fmt.Fprintf(w, "  hull:     convex, %d triangles\n", rep.Triangles)
		default:
			fmt.Fprintf(w, "  hull:     interior vertices %v\n", rep.Interior)
		}
	}
}

func planes(cmd *cobra.Command, args []string) error {
	lib, evalErrs, err := NewApp().Load(args[0])
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		printDiagnostics(cmd.ErrOrStderr(), "error", evalErrs)
		return fmt.Errorf("%s: %d script errors", args[0], len(evalErrs))
	}
	return figure.Encode(cmd.OutOrStdout(), lib, figure.Format(strings.ToLower(planeFormat)))
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "crystal",
		Short: "Grow convex crystals from bounding planes",
		Long: `crystal reconstructs convex polyhedra from sets of half-space planes.
Crystals come from figure scripts (.crystal) or YAML/JSON plane files.`,
		SilenceUsage: true,
	}

	buildCmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Build crystals and export them",
		Long: `build reconstructs every crystal in a script or plane file and writes
them to one STL, SVG, DXF or JSON file.`,
		Args: cobra.ExactArgs(1),
		RunE: build,
	}
	buildCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file. Defaults to the input name with the format's extension.")
	buildCmd.Flags().StringVarP(&formatName, "format", "f", "", "Output format: stl, svg, dxf or json. Defaults to the output extension, then stl.")
	buildCmd.Flags().StringVarP(&kernelName, "kernel", "k", "facet", "Geometry kernel: facet (exact), sdfx (marching cubes) or manifold (needs -tags=manifold).")
	buildCmd.Flags().IntVar(&cells, "cells", 200, "Marching cubes resolution for the sdfx kernel.")
	buildCmd.Flags().Float64Var(&epsilon, "epsilon", crystal.DefaultEpsilon, "Tie band for simultaneous plane crossings.")
	buildCmd.Flags().Float64Var(&weldTol, "weld", weld.DefaultTolerance, "Vertex weld tolerance.")
	buildCmd.Flags().BoolVar(&verify, "verify", false, "Cross-check each crystal against its convex hull.")
	rootCmd.AddCommand(buildCmd)

	infoCmd := &cobra.Command{
		Use:   "info [file]",
		Short: "Crystal reconstruction report",
		Long: `info reconstructs every crystal and prints face, vertex and edge counts,
skipped faces and envelope breaches.`,
		Args: cobra.ExactArgs(1),
		RunE: info,
	}
	infoCmd.Flags().Float64Var(&epsilon, "epsilon", crystal.DefaultEpsilon, "Tie band for simultaneous plane crossings.")
	infoCmd.Flags().Float64Var(&weldTol, "weld", weld.DefaultTolerance, "Vertex weld tolerance.")
	infoCmd.Flags().BoolVar(&verify, "verify", false, "Cross-check each crystal against its convex hull.")
	rootCmd.AddCommand(infoCmd)

	planesCmd := &cobra.Command{
		Use:   "planes [file]",
		Short: "Print the plane sets of a script",
		Long:  `planes evaluates a script and prints its crystals as a YAML or JSON plane file.`,
		Args:  cobra.ExactArgs(1),
		RunE:  planes,
	}
	planesCmd.Flags().StringVarP(&planeFormat, "format", "f", "yaml", "Plane file format: yaml or json.")
	rootCmd.AddCommand(planesCmd)

	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}
