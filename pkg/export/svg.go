package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/crystal/pkg/kernel"
)

// SVGOptions sizes the preview. Zero values use 800x600 with a 20 pixel
// margin.
type SVGOptions struct {
	Width, Height int
	Margin        int
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Margin <= 0 {
		o.Margin = 20
	}
	return o
}

// Isometric view basis: screen right, screen up, and towards the viewer.
var (
	viewRight = [3]float64{1 / math.Sqrt2, -1 / math.Sqrt2, 0}
	viewUp    = [3]float64{-1 / math.Sqrt(6), -1 / math.Sqrt(6), 2 / math.Sqrt(6)}
	viewEye   = [3]float64{1 / math.Sqrt(3), 1 / math.Sqrt(3), 1 / math.Sqrt(3)}
	light     = [3]float64{0.267, 0.535, 0.802}
)

func dot(a [3]float64, p [3]float32) float64 {
	return a[0]*float64(p[0]) + a[1]*float64(p[1]) + a[2]*float64(p[2])
}

func dot64(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// shape is one front-facing triangle ready to paint.
type shape struct {
	group int
	xs    [3]float64
	ys    [3]float64
	depth float64
	shade float64
}

// SVG draws an isometric preview of meshes, viewed from +X+Y+Z, with
// back faces culled and front faces painted far to near and shaded by a
// fixed light.
func SVG(w io.Writer, meshes []*kernel.Mesh, opts SVGOptions) error {
	opts = opts.withDefaults()

	var shapes []shape
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for g, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			t := m.Triangle(i)
			n := triNormal(t)
			if dot64(n, viewEye) <= 0 {
				continue
			}
			s := shape{group: g, shade: 0.35 + 0.65*math.Max(0, dot64(n, light))}
			for j, p := range t {
				s.xs[j] = dot(viewRight, p)
				s.ys[j] = -dot(viewUp, p)
				s.depth += dot(viewEye, p) / 3
				minX, maxX = math.Min(minX, s.xs[j]), math.Max(maxX, s.xs[j])
				minY, maxY = math.Min(minY, s.ys[j]), math.Max(maxY, s.ys[j])
			}
			shapes = append(shapes, s)
		}
	}
	if len(shapes) == 0 {
		return fmt.Errorf("export: svg: nothing to draw")
	}
	sort.SliceStable(shapes, func(i, j int) bool { return shapes[i].depth < shapes[j].depth })

	// Uniform scale to fit, centred.
	spanX, spanY := math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)
	k := math.Min(float64(opts.Width-2*opts.Margin)/spanX, float64(opts.Height-2*opts.Margin)/spanY)
	offX := (float64(opts.Width) - k*spanX) / 2
	offY := (float64(opts.Height) - k*spanY) / 2

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")
	for _, s := range shapes {
		xs, ys := make([]int, 3), make([]int, 3)
		for j := 0; j < 3; j++ {
			xs[j] = int(math.Round(offX + k*(s.xs[j]-minX)))
			ys[j] = int(math.Round(offY + k*(s.ys[j]-minY)))
		}
		c := fill(s.group, s.shade)
		canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:0.5", c, c))
	}
	canvas.End()
	return nil
}

// palette holds one base colour per mesh, cycled.
var palette = [][3]float64{
	{90, 160, 220},
	{220, 120, 90},
	{120, 200, 120},
	{200, 170, 80},
	{170, 120, 210},
}

func fill(group int, shade float64) string {
	c := palette[group%len(palette)]
	return fmt.Sprintf("rgb(%d,%d,%d)", int(c[0]*shade), int(c[1]*shade), int(c[2]*shade))
}
