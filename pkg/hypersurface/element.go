package hypersurface

// dim is the dimension of the ambient coordinate space. All geometry is
// carried in 4-padded coordinates regardless of the query dimension;
// lower-dimensional queries occupy the trailing components.
const dim = 4

// steps is the number of samples per axis in a grid cell.
const steps = 2

// AlmostZero and AlmostOne clamp edge interpolation away from exact cell
// corners. A corner sitting exactly on the threshold would otherwise
// produce zero-length cut segments.
const (
	AlmostZero = 1e-9
	AlmostOne  = 1 - AlmostZero
)

// Epsilon is the coincidence tolerance used when chaining cut segments
// into polygons and polygons into polyhedra. It is a variable so callers
// working with unusually scaled grids can widen it. Inputs whose cut
// points land within ~Epsilon of each other without being the same point
// can still be mis-chained; keep grid spacing many orders of magnitude
// above it.
var Epsilon = 1e-10

// Vec is a point or direction in the 4-padded ambient coordinate space.
type Vec [4]float64

// element carries the lazily computed centroid and normal shared by all
// surface element types. Derived quantities are computed on first access
// after the topology is fully built, then memoized until the owner is
// re-initialized.
type element struct {
	centroid   Vec
	normal     Vec
	centroidOK bool
	normalOK   bool
}

func (e *element) resetCache() {
	e.centroidOK = false
	e.normalOK = false
}

// flipOutward negates n in place if it points toward the outside
// reference direction vout. Normals must point away from the
// below-threshold region.
func flipOutward(n *Vec, vout Vec) {
	var dot float64
	for i := 0; i < dim; i++ {
		dot += n[i] * vout[i]
	}
	if dot > 0 {
		for i := 0; i < dim; i++ {
			n[i] = -n[i]
		}
	}
}

func sqr(x float64) float64 { return x * x }
