package field

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FromSDF3 adapts a signed-distance solid to a Field. SDF distance is
// negative inside the solid, so the field value is the negated distance:
// positive inside, zero on the boundary, negative outside. Extracting
// the surface at threshold 0 recovers the solid's boundary.
func FromSDF3(s sdf.SDF3) Field {
	return Func{N: 3, Eval: func(p []float64) float64 {
		return -s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]})
	}}
}

// Box returns the inside-positive field of an origin-centered box with
// the given side lengths.
func Box(x, y, z float64) (Field, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("field: box: %w", err)
	}
	return FromSDF3(s), nil
}

// Cylinder returns the inside-positive field of an origin-centered,
// z-aligned cylinder.
func Cylinder(height, radius float64) (Field, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("field: cylinder: %w", err)
	}
	return FromSDF3(s), nil
}
