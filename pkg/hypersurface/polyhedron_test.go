package hypersurface

import (
	"math"
	"testing"
)

func TestTetrahedronNormal(t *testing.T) {
	// Orthonormal edge vectors along the last three axes span a corner
	// tetrahedron of volume 1/6; its generalized cross product points
	// along the remaining axis.
	n := tetrahedronNormal(Vec{0, 1, 0, 0}, Vec{0, 0, 1, 0}, Vec{0, 0, 0, 1})
	want := Vec{1.0 / 6, 0, 0, 0}
	for k := 0; k < dim; k++ {
		if !almostEqual(n[k], want[k], 1e-15) {
			t.Fatalf("normal = %v, want %v", n, want)
		}
	}

	// Swapping two edges flips the sign.
	m := tetrahedronNormal(Vec{0, 0, 1, 0}, Vec{0, 1, 0, 0}, Vec{0, 0, 0, 1})
	if !almostEqual(m[0], -1.0/6, 1e-15) {
		t.Fatalf("swapped-edge normal = %v, want -1/6 along axis 0", m)
	}

	// Degenerate (coplanar) edges give a zero normal.
	z := tetrahedronNormal(Vec{0, 1, 0, 0}, Vec{0, 0, 1, 0}, Vec{0, 1, 1, 0})
	for k := 0; k < dim; k++ {
		if z[k] != 0 {
			t.Fatalf("coplanar normal = %v, want zero", z)
		}
	}
}

func TestLinesConnected(t *testing.T) {
	var a, b, c Line
	a.init([2]Vec{{0, 0.5, 0, 0}, {0, 0, 0.5, 0}}, Vec{}, [2]int{0, 3})
	// Same edge seen from the neighboring hyperface, endpoints swapped.
	b.init([2]Vec{{0, 0, 0.5, 0}, {0, 0.5, 0, 0}}, Vec{}, [2]int{0, 3})
	c.init([2]Vec{{0, 1, 1, 0}, {0, 1, 1, 1}}, Vec{}, [2]int{0, 1})

	if !linesConnected(&a, &b) {
		t.Error("identical edge with swapped endpoints not connected")
	}
	if !linesConnected(&a, &a) {
		t.Error("line not connected to itself")
	}
	if linesConnected(&a, &c) {
		t.Error("distinct edges reported as connected")
	}
}

func TestPolyhedronAdjacency(t *testing.T) {
	lines := triangleLines()
	var shared Polygon
	shared.init(0)
	for i := range lines {
		shared.addLine(&lines[i], true)
	}

	// A polygon reusing one of the same lines is adjacent; a polygon
	// built from far-away lines is not.
	near := triangleLines()
	var adjacent Polygon
	adjacent.init(1)
	adjacent.addLine(&near[0], true)

	farLines := triangleLines()
	for i := range farLines {
		for k := 1; k < dim; k++ {
			farLines[i].start[k] += 10
			farLines[i].end[k] += 10
		}
	}
	var far Polygon
	far.init(0)
	for i := range farLines {
		far.addLine(&farLines[i], true)
	}

	var p Polyhedron
	p.init()
	if !p.addPolygon(&shared, false) {
		t.Fatal("first polygon rejected")
	}
	if !p.addPolygon(&adjacent, false) {
		t.Fatal("adjacent polygon rejected")
	}
	if p.addPolygon(&far, false) {
		t.Fatal("disjoint polygon accepted")
	}
	if p.NumberPolygons() != 2 {
		t.Fatalf("NumberPolygons = %d, want 2", p.NumberPolygons())
	}
}

// cornerHypercube runs the 4-D kernel on a unit cell with a single
// above corner at the origin and returns its one polyhedron.
func cornerHypercube(t *testing.T) *Polyhedron {
	t.Helper()
	var h Hypercube
	var corners [steps][steps][steps][steps]float64
	corners[0][0][0][0] = 1
	h.init(corners, Vec{1, 1, 1, 1})
	h.constructPolyhedra(0.5)
	if h.NumberPolyhedra() != 1 {
		t.Fatalf("NumberPolyhedra = %d, want 1", h.NumberPolyhedra())
	}
	return h.Polyhedron(0)
}

func TestPolyhedronCentroidInsideHull(t *testing.T) {
	p := cornerHypercube(t)
	c := p.Centroid()
	for k := 0; k < dim; k++ {
		if c[k] <= 0 || c[k] >= 0.5 {
			t.Errorf("centroid[%d] = %g, want inside (0, 0.5)", k, c[k])
		}
	}
}

func TestPolyhedronNormalOrientation(t *testing.T) {
	p := cornerHypercube(t)
	n := p.Normal()
	c := p.Centroid()
	// Every boundary line's outside point must sit on the non-normal
	// side.
	for _, poly := range p.Polygons() {
		for _, l := range poly.Lines() {
			var dot float64
			for k := 0; k < dim; k++ {
				dot += n[k] * (l.Outside()[k] - c[k])
			}
			if dot > 0 {
				t.Fatalf("normal %v points toward the outside reference %v", n, l.Outside())
			}
		}
	}
	var mag float64
	for k := 0; k < dim; k++ {
		mag += n[k] * n[k]
	}
	if math.Sqrt(mag) <= 0 {
		t.Fatal("zero-magnitude polyhedron normal")
	}
}
