package hypersurface

import "fmt"

const (
	// nCubes is the number of 3-D hyperfaces of a hypercube.
	nCubes = 8
	// maxHypercubePolygons bounds the polygons collected from all
	// hyperface cubes.
	maxHypercubePolygons = nCubes * maxPolygons
	// maxPolyhedra bounds the surface pieces one hypercube can produce.
	maxPolyhedra = 10
)

// Hypercube is a 4-D grid cell. It decomposes into eight cubes (one pair
// of opposite hyperfaces per axis), collects their cut polygons, and
// assembles them into one or more closed polyhedra.
//
// Corner indexing is corners[a][b][c][d] along the four axes in
// ascending coordinate order; axis 0 is conventionally time.
type Hypercube struct {
	corners [steps][steps][steps][steps]float64
	dx      Vec

	cubes          [nCubes]Cube
	polygonRefs    [maxHypercubePolygons]*Polygon
	numberPolygons int

	polyhedra       [maxPolyhedra]Polyhedron
	numberPolyhedra int
	ambiguous       bool
}

// init resets the hypercube for a new query.
func (h *Hypercube) init(corners [steps][steps][steps][steps]float64, dx Vec) {
	h.corners = corners
	h.dx = dx
	h.numberPolygons = 0
	h.numberPolyhedra = 0
	h.ambiguous = false
}

// isAmbiguous reports whether the last query allowed more than one
// topologically valid surface.
func (h *Hypercube) isAmbiguous() bool { return h.ambiguous }

// NumberPolyhedra returns the number of surface pieces assembled.
func (h *Hypercube) NumberPolyhedra() int { return h.numberPolyhedra }

// Polyhedron returns the i-th assembled surface piece.
func (h *Hypercube) Polyhedron(i int) *Polyhedron { return &h.polyhedra[i] }

// splitToCubes initializes the eight hyperface cubes and returns the
// number of corners below the threshold (counted once, on the axis-0
// pass, which visits every corner exactly once across its two faces).
func (h *Hypercube) splitToCubes(value float64) int {
	below := 0
	n := 0
	for axis := 0; axis < dim; axis++ {
		for j := 0; j < steps; j++ {
			var cu [steps][steps][steps]float64
			for a := 0; a < steps; a++ {
				for b := 0; b < steps; b++ {
					for c := 0; c < steps; c++ {
						var v float64
						switch axis {
						case 0:
							v = h.corners[j][a][b][c]
							if v < value {
								below++
							}
						case 1:
							v = h.corners[a][j][b][c]
						case 2:
							v = h.corners[a][b][j][c]
						default:
							v = h.corners[a][b][c][j]
						}
						cu[a][b][c] = v
					}
				}
			}
			h.cubes[n].init(cu, axis, float64(j)*h.dx[axis], h.dx)
			n++
		}
	}
	return below
}

// checkAmbiguity decides whether the cut polygons admit more than one
// grouping: either a hyperface cube was ambiguous, or all 24 possible
// lines were found with two corners on one side of the threshold (folded
// by the above/below symmetry), the opposite-corner configuration.
func (h *Hypercube) checkAmbiguity(below int) {
	for i := 0; i < nCubes; i++ {
		if h.cubes[i].isAmbiguous() {
			h.ambiguous = true
			return
		}
	}
	lines := 0
	for i := 0; i < nCubes; i++ {
		lines += h.cubes[i].numberLines
	}
	if below > 8 {
		below = 16 - below
	}
	if lines == 24 && below == 2 {
		h.ambiguous = true
	}
}

// constructPolyhedra finds all cut polygons on the hyperface cubes and
// assembles them into closed polyhedra, mirroring the cube's polygon
// assembly one dimension up: polygons chain by shared boundary lines
// instead of shared endpoints.
func (h *Hypercube) constructPolyhedra(value float64) {
	below := h.splitToCubes(value)

	h.numberPolygons = 0
	for i := 0; i < nCubes; i++ {
		cube := &h.cubes[i]
		cube.constructPolygons(value)
		for j := 0; j < cube.numberPolygons; j++ {
			h.polygonRefs[h.numberPolygons] = &cube.polygons[j]
			h.numberPolygons++
		}
	}
	if h.numberPolygons == 0 {
		h.numberPolyhedra = 0
		return
	}
	h.checkAmbiguity(below)

	if !h.ambiguous {
		poly := &h.polyhedra[0]
		poly.init()
		for i := 0; i < h.numberPolygons; i++ {
			poly.addPolygon(h.polygonRefs[i], true)
		}
		h.numberPolyhedra = 1
		return
	}

	var notUsed [maxHypercubePolygons]bool
	for i := 0; i < h.numberPolygons; i++ {
		notUsed[i] = true
	}
	used := 0
	for used < h.numberPolygons {
		if h.numberPolygons-used < 3 {
			panic(fmt.Sprintf("hypersurface: cannot close a polyhedron from %d remaining polygons", h.numberPolygons-used))
		}
		poly := &h.polyhedra[h.numberPolyhedra]
		poly.init()
		for i := 0; i < h.numberPolygons; i++ {
			if notUsed[i] && poly.addPolygon(h.polygonRefs[i], false) {
				notUsed[i] = false
				used++
				i = -1
			}
		}
		h.numberPolyhedra++
	}
}
