package export

import (
	"fmt"

	"github.com/chazu/crystal/pkg/kernel"
	"github.com/yofu/dxf"
)

// DXF writes the feature edges of every mesh as 3D lines, one layer per
// mesh named after it.
func DXF(path string, meshes []*kernel.Mesh) error {
	d := dxf.NewDrawing()
	for i, m := range meshes {
		layer := m.Name
		if layer == "" {
			layer = fmt.Sprintf("crystal-%d", i)
		}
		if _, err := d.AddLayer(layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("export: dxf: layer %q: %w", layer, err)
		}
		for _, e := range FeatureEdges(m) {
			a, b := e[0], e[1]
			_, err := d.Line(
				float64(a[0]), float64(a[1]), float64(a[2]),
				float64(b[0]), float64(b[1]), float64(b[2]),
			)
			if err != nil {
				return fmt.Errorf("export: dxf: %w", err)
			}
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: dxf: %w", err)
	}
	return nil
}
