package hypersurface

import (
	"fmt"
	"io"
)

// maxElements bounds the surface pieces a single cell query can produce
// in any dimension (the 4-D worst case).
const maxElements = maxPolyhedra

// Finder locates the constant-value surface within single grid cells.
// It owns one instance of each dimension's cell machinery and the flat
// result buffers; the buffers are overwritten on every query, so a
// Finder must not be shared between concurrent queries. Independent
// Finders share nothing.
type Finder struct {
	dimension int
	value     float64
	dx        Vec

	square    Square
	cube      Cube
	hypercube Hypercube

	numberElements int
	centroids      [maxElements]Vec
	normals        [maxElements]Vec

	initialized bool
	debug       io.Writer
}

// NewFinder returns an uninitialized Finder. Init must be called before
// the first query.
func NewFinder() *Finder {
	return &Finder{}
}

// Init configures the Finder for cells of the given dimension (2, 3 or
// 4), threshold value, and per-axis physical spacing (len(spacing) ==
// dimension). Re-calling Init resets the Finder for a new threshold or
// spacing and clears any previous results.
func (f *Finder) Init(dimension int, value float64, spacing []float64) error {
	if dimension < 2 || dimension > dim {
		return fmt.Errorf("hypersurface: unsupported dimension %d, want 2, 3 or 4", dimension)
	}
	if len(spacing) != dimension {
		return fmt.Errorf("hypersurface: got %d spacing values for dimension %d", len(spacing), dimension)
	}
	f.dx = Vec{1, 1, 1, 1}
	for i, s := range spacing {
		if s <= 0 {
			return fmt.Errorf("hypersurface: spacing[%d] = %g, want > 0", i, s)
		}
		f.dx[i+dim-dimension] = s
	}
	f.dimension = dimension
	f.value = value
	f.numberElements = 0
	f.initialized = true
	return nil
}

// Dimension returns the configured cell dimension (0 before Init).
func (f *Finder) Dimension() int { return f.dimension }

// SetDebugOutput directs a plain-text triangle stream for 3-D queries
// made through FindSurface3DAt to w: one row of nine coordinates per fan
// triangle. Pass nil to disable. Pure side-output for visualization.
func (f *Finder) SetDebugOutput(w io.Writer) { f.debug = w }

func (f *Finder) mustBe(dimension int) {
	if !f.initialized || f.dimension != dimension {
		panic(fmt.Sprintf("hypersurface: finder not initialized for %d-D queries", dimension))
	}
}

// FindSurface2D queries one 2-D cell. cell[a][b] steps along the two
// axes in ascending coordinate order.
func (f *Finder) FindSurface2D(cell [steps][steps]float64) {
	f.mustBe(2)
	f.square.init(cell, [2]int{0, 1}, [2]float64{0, 0}, f.dx)
	f.square.constructLines(f.value)
	f.numberElements = f.square.numberLines
	for i := 0; i < f.numberElements; i++ {
		f.centroids[i] = f.square.lines[i].Centroid()
		f.normals[i] = f.square.lines[i].Normal()
	}
}

// FindSurface3D queries one 3-D cell. cell[a][b][c] steps along the
// three axes in ascending coordinate order.
func (f *Finder) FindSurface3D(cell [steps][steps][steps]float64) {
	f.surface3D(cell, Vec{}, false)
}

// FindSurface3DAt is FindSurface3D with the cell's absolute position,
// so the debug triangle stream (if configured) carries absolute
// coordinates. position holds the three axis offsets of the cell origin.
func (f *Finder) FindSurface3DAt(cell [steps][steps][steps]float64, position [3]float64) {
	var pos Vec
	copy(pos[dim-3:], position[:])
	f.surface3D(cell, pos, true)
}

func (f *Finder) surface3D(cell [steps][steps][steps]float64, position Vec, emit bool) {
	f.mustBe(3)
	// Cheap pre-check: a cell with every corner on the same side of the
	// threshold is not crossed.
	above := 0
	for a := 0; a < steps; a++ {
		for b := 0; b < steps; b++ {
			for c := 0; c < steps; c++ {
				if cell[a][b][c] >= f.value {
					above++
				}
			}
		}
	}
	if above == 0 || above == 8 {
		f.numberElements = 0
		return
	}
	f.cube.init(cell, 0, 0, f.dx)
	f.cube.constructPolygons(f.value)
	f.numberElements = f.cube.numberPolygons
	for i := 0; i < f.numberElements; i++ {
		poly := &f.cube.polygons[i]
		f.centroids[i] = poly.Centroid()
		f.normals[i] = poly.Normal()
		if emit && f.debug != nil {
			poly.writeTriangles(f.debug, position)
		}
	}
}

// FindSurface4D queries one 4-D cell. cell[a][b][c][d] steps along the
// four axes in ascending coordinate order, axis 0 conventionally time.
func (f *Finder) FindSurface4D(cell [steps][steps][steps][steps]float64) {
	f.mustBe(4)
	above := 0
	for a := 0; a < steps; a++ {
		for b := 0; b < steps; b++ {
			for c := 0; c < steps; c++ {
				for d := 0; d < steps; d++ {
					if cell[a][b][c][d] >= f.value {
						above++
					}
				}
			}
		}
	}
	if above == 0 || above == 16 {
		f.numberElements = 0
		return
	}
	f.hypercube.init(cell, f.dx)
	f.hypercube.constructPolyhedra(f.value)
	f.numberElements = f.hypercube.numberPolyhedra
	for i := 0; i < f.numberElements; i++ {
		poly := &f.hypercube.polyhedra[i]
		f.centroids[i] = poly.Centroid()
		f.normals[i] = poly.Normal()
	}
}

// NumberElements returns the number of surface pieces found by the last
// query, zero when the cell was not crossed.
func (f *Finder) NumberElements() int { return f.numberElements }

// IsAmbiguous reports whether the last query hit a topologically
// ambiguous cell configuration.
func (f *Finder) IsAmbiguous() bool {
	switch f.dimension {
	case 2:
		return f.square.isAmbiguous()
	case 3:
		return f.cube.isAmbiguous()
	case 4:
		return f.hypercube.isAmbiguous()
	}
	return false
}

func (f *Finder) checkIndex(i, component int) error {
	if i < 0 || i >= f.numberElements {
		return fmt.Errorf("hypersurface: element index %d out of range, have %d elements", i, f.numberElements)
	}
	if component < 0 || component >= f.dimension {
		return fmt.Errorf("hypersurface: component %d out of range for dimension %d", component, f.dimension)
	}
	return nil
}

// CentroidElement returns one coordinate of element i's centroid,
// relative to the cell origin.
func (f *Finder) CentroidElement(i, component int) (float64, error) {
	if err := f.checkIndex(i, component); err != nil {
		return 0, err
	}
	return f.centroids[i][component+dim-f.dimension], nil
}

// NormalElement returns one component of element i's normal.
func (f *Finder) NormalElement(i, component int) (float64, error) {
	if err := f.checkIndex(i, component); err != nil {
		return 0, err
	}
	return f.normals[i][component+dim-f.dimension], nil
}

// Centroids returns the centroids of the last query, one row of
// dimension components per element, relative to the cell origin.
func (f *Finder) Centroids() [][]float64 {
	return f.copyRows(&f.centroids)
}

// Normals returns the normals of the last query, one row of dimension
// components per element.
func (f *Finder) Normals() [][]float64 {
	return f.copyRows(&f.normals)
}

func (f *Finder) copyRows(buf *[maxElements]Vec) [][]float64 {
	rows := make([][]float64, f.numberElements)
	for i := 0; i < f.numberElements; i++ {
		row := make([]float64, f.dimension)
		copy(row, buf[i][dim-f.dimension:])
		rows[i] = row
	}
	return rows
}

// Triangles returns the fan triangulation of the last 3-D query's
// polygons: for each boundary line one triangle (line start, line end,
// polygon centroid) in the three free coordinates, relative to the cell
// origin. Nil for non-3-D queries or uncrossed cells.
func (f *Finder) Triangles() [][3][3]float64 {
	if f.dimension != 3 || f.numberElements == 0 {
		return nil
	}
	var tris [][3][3]float64
	for i := 0; i < f.cube.numberPolygons; i++ {
		poly := &f.cube.polygons[i]
		c := poly.Centroid()
		for j := 0; j < poly.numberLines; j++ {
			l := poly.lines[j]
			tris = append(tris, [3][3]float64{
				{l.start[poly.x1], l.start[poly.x2], l.start[poly.x3]},
				{l.end[poly.x1], l.end[poly.x2], l.end[poly.x3]},
				{c[poly.x1], c[poly.x2], c[poly.x3]},
			})
		}
	}
	return tris
}
