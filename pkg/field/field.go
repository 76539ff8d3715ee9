// Package field provides the scalar field sources the surface
// extraction driver samples: analytic fields, combinators, SDF-backed
// solids, and the regular grids they are sampled on.
package field

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is a scalar field defined over an N-dimensional coordinate
// space. Implementations must be safe for concurrent calls to At.
type Field interface {
	// Dim returns the number of coordinates the field expects.
	Dim() int
	// At returns the field value at p, where len(p) == Dim().
	At(p []float64) float64
}

// Func adapts a plain function to a Field.
type Func struct {
	N    int
	Eval func(p []float64) float64
}

// Dim returns the coordinate count.
func (f Func) Dim() int { return f.N }

// At evaluates the wrapped function.
func (f Func) At(p []float64) float64 { return f.Eval(p) }

// Uniform returns an n-dimensional constant field.
func Uniform(n int, value float64) Field {
	return Func{N: n, Eval: func([]float64) float64 { return value }}
}

// Sphere returns a 3-D field whose value is radius minus the distance to
// center, so the surface at threshold 0 is the sphere itself and values
// increase toward the center.
func Sphere(center r3.Vec, radius float64) Field {
	return Func{N: 3, Eval: func(p []float64) float64 {
		d := r3.Sub(r3.Vec{X: p[0], Y: p[1], Z: p[2]}, center)
		return radius - r3.Norm(d)
	}}
}

// Gaussian returns a 3-D bump field amplitude·exp(−|p−center|²/2width²).
func Gaussian(center r3.Vec, amplitude, width float64) Field {
	return Func{N: 3, Eval: func(p []float64) float64 {
		d := r3.Sub(r3.Vec{X: p[0], Y: p[1], Z: p[2]}, center)
		r2 := r3.Dot(d, d)
		return amplitude * math.Exp(-r2/(2*width*width))
	}}
}

// Union returns the pointwise maximum of a and b; with inside-positive
// fields this is the union of their enclosed regions. Both fields must
// share a dimension.
func Union(a, b Field) (Field, error) {
	return combine(a, b, math.Max)
}

// Intersect returns the pointwise minimum of a and b, the intersection
// of their enclosed regions.
func Intersect(a, b Field) (Field, error) {
	return combine(a, b, math.Min)
}

func combine(a, b Field, op func(x, y float64) float64) (Field, error) {
	if a.Dim() != b.Dim() {
		return nil, fmt.Errorf("field: cannot combine fields of dimension %d and %d", a.Dim(), b.Dim())
	}
	return Func{N: a.Dim(), Eval: func(p []float64) float64 {
		return op(a.At(p), b.At(p))
	}}, nil
}

// Offset shifts the field value by delta everywhere, moving the surface
// a given threshold selects.
func Offset(f Field, delta float64) Field {
	return Func{N: f.Dim(), Eval: func(p []float64) float64 {
		return f.At(p) + delta
	}}
}

// Scale multiplies the field value by factor everywhere.
func Scale(f Field, factor float64) Field {
	return Func{N: f.Dim(), Eval: func(p []float64) float64 {
		return factor * f.At(p)
	}}
}

// Cooling lifts a spatial field into space-time: the result has one
// extra leading (time) coordinate and its value decays as exp(−rate·t).
// With a positive rate an initially above-threshold region shrinks and
// eventually freezes out entirely.
func Cooling(spatial Field, rate float64) Field {
	return Func{N: spatial.Dim() + 1, Eval: func(p []float64) float64 {
		return spatial.At(p[1:]) * math.Exp(-rate*p[0])
	}}
}

// Set holds the named fields a run script defines.
type Set struct {
	fields map[string]Field
	first  string
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{fields: make(map[string]Field)}
}

// Define registers f under name. Redefining a name is an error.
func (s *Set) Define(name string, f Field) error {
	if name == "" {
		return fmt.Errorf("field: empty field name")
	}
	if _, ok := s.fields[name]; ok {
		return fmt.Errorf("field: %q already defined", name)
	}
	if len(s.fields) == 0 {
		s.first = name
	}
	s.fields[name] = f
	return nil
}

// Get returns the field registered under name.
func (s *Set) Get(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Default returns the first field defined, the conventional choice when
// a run does not name one.
func (s *Set) Default() (Field, bool) {
	f, ok := s.fields[s.first]
	return f, ok
}

// Names returns the defined field names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined fields.
func (s *Set) Len() int { return len(s.fields) }
