package hypersurface

import "fmt"

const (
	// nSquares is the number of 2-D faces of a cube.
	nSquares = 6
	// maxCubeLines is the worst-case number of cut lines on a cube's
	// faces: two per face.
	maxCubeLines = nSquares * 2
	// maxPolygons bounds the surface pieces one cube can produce.
	maxPolygons = 8
)

// Cube is a 3-D grid cell. It decomposes into six squares, collects
// their cut lines, and assembles the lines into one or more closed
// polygons.
//
// Corner indexing is corners[a][b][c] where a, b, c step along the three
// free axes in ascending coordinate order.
type Cube struct {
	corners    [steps][steps][steps]float64
	dx         Vec
	constIdx   int
	constValue float64
	x1, x2, x3 int

	squares     [nSquares]Square
	lineRefs    [maxCubeLines]*Line
	numberLines int

	polygons       [maxPolygons]Polygon
	numberPolygons int
	ambiguous      bool
}

// init resets the cube for a new query. constIdx and constValue pin the
// coordinate held fixed across the cell (the hyperface identity in a 4-D
// query; index 0 at value 0 for a plain 3-D query).
func (c *Cube) init(corners [steps][steps][steps]float64, constIdx int, constValue float64, dx Vec) {
	c.corners = corners
	c.constIdx = constIdx
	c.constValue = constValue
	c.dx = dx
	n := 0
	for i := 0; i < dim; i++ {
		if i == constIdx {
			continue
		}
		switch n {
		case 0:
			c.x1 = i
		case 1:
			c.x2 = i
		default:
			c.x3 = i
		}
		n++
	}
	c.numberLines = 0
	c.numberPolygons = 0
	c.ambiguous = false
}

// isAmbiguous reports whether the last query allowed more than one
// topologically valid surface.
func (c *Cube) isAmbiguous() bool { return c.ambiguous }

// NumberLines returns the number of cut lines found on the cube's faces.
func (c *Cube) NumberLines() int { return c.numberLines }

// NumberPolygons returns the number of surface pieces assembled.
func (c *Cube) NumberPolygons() int { return c.numberPolygons }

// Polygon returns the i-th assembled surface piece.
func (c *Cube) Polygon(i int) *Polygon { return &c.polygons[i] }

// splitToSquares initializes the six face squares: for each free axis,
// the pair of opposite faces obtained by pinning that axis at 0 and at
// its edge length.
func (c *Cube) splitToSquares() {
	n := 0
	for _, axis := range [3]int{c.x1, c.x2, c.x3} {
		for j := 0; j < steps; j++ {
			var face [steps][steps]float64
			for a := 0; a < steps; a++ {
				for b := 0; b < steps; b++ {
					switch axis {
					case c.x1:
						face[a][b] = c.corners[j][a][b]
					case c.x2:
						face[a][b] = c.corners[a][j][b]
					default:
						face[a][b] = c.corners[a][b][j]
					}
				}
			}
			constIdx := [2]int{c.constIdx, axis}
			constValue := [2]float64{c.constValue, float64(j) * c.dx[axis]}
			c.squares[n].init(face, constIdx, constValue, c.dx)
			n++
		}
	}
}

// checkAmbiguity decides whether the cut lines admit more than one
// grouping: either a face saddle occurred, or exactly six lines were
// found with two corners on one side of the threshold (folded by the
// above/below symmetry), the opposite-corner configuration.
func (c *Cube) checkAmbiguity(below int) {
	for i := 0; i < nSquares; i++ {
		if c.squares[i].isAmbiguous() {
			c.ambiguous = true
			return
		}
	}
	if below > 4 {
		below = 8 - below
	}
	if c.numberLines == 6 && below == 2 {
		c.ambiguous = true
	}
}

// constructPolygons finds all cut lines on the cube's faces and
// assembles them into closed polygons. In the common unambiguous case
// every line belongs to the single polygon and no chaining checks are
// needed; the ambiguous case grows polygons greedily, restarting the
// scan after every successful append so out-of-order lines are still
// picked up.
func (c *Cube) constructPolygons(value float64) {
	c.splitToSquares()

	c.numberLines = 0
	for i := 0; i < nSquares; i++ {
		sq := &c.squares[i]
		sq.constructLines(value)
		for j := 0; j < sq.numberLines; j++ {
			c.lineRefs[c.numberLines] = &sq.lines[j]
			c.numberLines++
		}
	}
	// No lines can happen when this cube is a hyperface of a crossed
	// hypercube that the surface misses entirely.
	if c.numberLines == 0 {
		return
	}

	below := 0
	for a := 0; a < steps; a++ {
		for b := 0; b < steps; b++ {
			for d := 0; d < steps; d++ {
				if c.corners[a][b][d] < value {
					below++
				}
			}
		}
	}
	c.checkAmbiguity(below)

	if !c.ambiguous {
		poly := &c.polygons[0]
		poly.init(c.constIdx)
		for i := 0; i < c.numberLines; i++ {
			poly.addLine(c.lineRefs[i], true)
		}
		c.numberPolygons = 1
		return
	}

	var notUsed [maxCubeLines]bool
	for i := 0; i < c.numberLines; i++ {
		notUsed[i] = true
	}
	used := 0
	for used < c.numberLines {
		if c.numberLines-used < 3 {
			panic(fmt.Sprintf("hypersurface: cannot close a polygon from %d remaining lines", c.numberLines-used))
		}
		poly := &c.polygons[c.numberPolygons]
		poly.init(c.constIdx)
		for i := 0; i < c.numberLines; i++ {
			if notUsed[i] && poly.addLine(c.lineRefs[i], false) {
				notUsed[i] = false
				used++
				i = -1
			}
		}
		c.numberPolygons++
	}
}
