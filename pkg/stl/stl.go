// Package stl writes extracted surface triangles to STL files for
// inspection in mesh viewers.
package stl

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Write saves triangles to an STL file at path. Each triangle is three
// vertices of three coordinates; vertex order fixes the facet normal by
// the right-hand rule. Per-cell extraction does not orient neighboring
// fans consistently, so viewers should render double-sided.
func Write(path string, triangles [][3][3]float64) error {
	if len(triangles) == 0 {
		return fmt.Errorf("stl: no triangles to write")
	}
	mesh := make([]*sdf.Triangle3, 0, len(triangles))
	for _, t := range triangles {
		tri := sdf.Triangle3{
			v3.Vec{X: t[0][0], Y: t[0][1], Z: t[0][2]},
			v3.Vec{X: t[1][0], Y: t[1][1], Z: t[1][2]},
			v3.Vec{X: t[2][0], Y: t[2][1], Z: t[2][2]},
		}
		if tri.Degenerate(0) {
			continue
		}
		mesh = append(mesh, &tri)
	}
	if err := render.SaveSTL(path, mesh); err != nil {
		return fmt.Errorf("stl: %w", err)
	}
	return nil
}
