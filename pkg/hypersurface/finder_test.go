package hypersurface

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func norm(rows [][]float64, i int) float64 {
	var s float64
	for _, v := range rows[i] {
		s += v * v
	}
	return math.Sqrt(s)
}

func newFinder(t *testing.T, dimension int, value float64, spacing []float64) *Finder {
	t.Helper()
	f := NewFinder()
	if err := f.Init(dimension, value, spacing); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return f
}

func TestInitValidation(t *testing.T) {
	f := NewFinder()
	if err := f.Init(5, 0, []float64{1, 1, 1, 1, 1}); err == nil {
		t.Fatal("expected error for dimension 5")
	}
	if err := f.Init(1, 0, []float64{1}); err == nil {
		t.Fatal("expected error for dimension 1")
	}
	if err := f.Init(3, 0, []float64{1, 1}); err == nil {
		t.Fatal("expected error for spacing length mismatch")
	}
	if err := f.Init(3, 0, []float64{1, 0, 1}); err == nil {
		t.Fatal("expected error for zero spacing")
	}
	if err := f.Init(3, 0, []float64{1, -0.5, 1}); err == nil {
		t.Fatal("expected error for negative spacing")
	}
	if err := f.Init(3, 0.5, []float64{1, 1, 1}); err != nil {
		t.Fatalf("valid Init failed: %v", err)
	}
	if f.Dimension() != 3 {
		t.Fatalf("Dimension() = %d, want 3", f.Dimension())
	}
}

func TestReinitClearsResults(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	f.FindSurface2D([2][2]float64{{0, 0}, {1, 1}})
	if f.NumberElements() != 1 {
		t.Fatalf("NumberElements = %d, want 1", f.NumberElements())
	}
	if err := f.Init(2, 0.5, []float64{1, 1}); err != nil {
		t.Fatalf("re-Init failed: %v", err)
	}
	if f.NumberElements() != 0 {
		t.Fatalf("NumberElements after re-Init = %d, want 0", f.NumberElements())
	}
}

func TestUninitializedQueryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on uninitialized query")
		}
	}()
	NewFinder().FindSurface2D([2][2]float64{{0, 0}, {1, 1}})
}

func TestDimensionMismatchPanics(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on 3-D query of a 2-D finder")
		}
	}()
	f.FindSurface3D([2][2][2]float64{})
}

func TestSurface2DNotCrossed(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	f.FindSurface2D([2][2]float64{{0, 0}, {0.2, 0.4}})
	if f.NumberElements() != 0 {
		t.Fatalf("NumberElements = %d, want 0 for all-below cell", f.NumberElements())
	}
	f.FindSurface2D([2][2]float64{{1, 2}, {3, 4}})
	if f.NumberElements() != 0 {
		t.Fatalf("NumberElements = %d, want 0 for all-above cell", f.NumberElements())
	}
}

func TestSurface2DStraightCut(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	// Values rise along the first axis only; the cut is the vertical
	// line through its midpoint.
	f.FindSurface2D([2][2]float64{{0, 0}, {1, 1}})
	if f.NumberElements() != 1 {
		t.Fatalf("NumberElements = %d, want 1", f.NumberElements())
	}
	if f.IsAmbiguous() {
		t.Fatal("straight cut reported as ambiguous")
	}

	for c, want := range []float64{0.5, 0.5} {
		got, err := f.CentroidElement(0, c)
		if err != nil {
			t.Fatalf("CentroidElement(0, %d): %v", c, err)
		}
		if !almostEqual(got, want, 1e-12) {
			t.Errorf("centroid[%d] = %g, want %g", c, got, want)
		}
	}

	// The first axis low side is below threshold, so the normal points
	// along the positive first axis with the segment length as magnitude.
	n0, err := f.NormalElement(0, 0)
	if err != nil {
		t.Fatalf("NormalElement(0, 0): %v", err)
	}
	n1, err := f.NormalElement(0, 1)
	if err != nil {
		t.Fatalf("NormalElement(0, 1): %v", err)
	}
	if !almostEqual(n0, 1, 1e-12) || !almostEqual(n1, 0, 1e-12) {
		t.Errorf("normal = (%g, %g), want (1, 0)", n0, n1)
	}
}

func TestSurface2DSaddle(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	f.FindSurface2D([2][2]float64{{1, 0}, {0, 1}})
	if !f.IsAmbiguous() {
		t.Fatal("saddle cell not reported as ambiguous")
	}
	if f.NumberElements() != 2 {
		t.Fatalf("NumberElements = %d, want 2 for a saddle", f.NumberElements())
	}
	// Both cut segments have positive length.
	normals := f.Normals()
	for i := range normals {
		if norm(normals, i) <= 0 {
			t.Errorf("element %d has zero-length normal", i)
		}
	}
}

func TestSurface2DCornerOnThreshold(t *testing.T) {
	f := newFinder(t, 2, 0.5, []float64{1, 1})
	// Corner (0,0) sits exactly on the threshold with the corner along
	// the first axis below; the cut is nudged off the corner instead of
	// collapsing to a point.
	f.FindSurface2D([2][2]float64{{0.5, 1}, {0, 1}})
	if f.NumberElements() != 1 {
		t.Fatalf("NumberElements = %d, want 1", f.NumberElements())
	}
	if norm(f.Normals(), 0) <= 0 {
		t.Fatal("zero-length cut for corner on threshold")
	}
}

func TestSurface2DScaleInvariance(t *testing.T) {
	cell := [2][2]float64{{0, 0.2}, {1, 0.9}}

	unit := newFinder(t, 2, 0.5, []float64{1, 1})
	unit.FindSurface2D(cell)
	scaled := newFinder(t, 2, 0.5, []float64{2, 2})
	scaled.FindSurface2D(cell)

	if unit.NumberElements() != scaled.NumberElements() {
		t.Fatalf("element counts differ: %d vs %d", unit.NumberElements(), scaled.NumberElements())
	}
	uc, sc := unit.Centroids(), scaled.Centroids()
	un, sn := unit.Normals(), scaled.Normals()
	for i := range uc {
		for c := 0; c < 2; c++ {
			if !almostEqual(sc[i][c], 2*uc[i][c], 1e-12) {
				t.Errorf("centroid[%d][%d]: %g, want %g", i, c, sc[i][c], 2*uc[i][c])
			}
		}
		// Doubling the spacing doubles segment lengths.
		if !almostEqual(norm(sn, i), 2*norm(un, i), 1e-12) {
			t.Errorf("normal magnitude %g, want %g", norm(sn, i), 2*norm(un, i))
		}
	}
}

func cornerCell3D() [2][2][2]float64 {
	var cell [2][2][2]float64
	cell[0][0][0] = 1
	return cell
}

func TestSurface3DNotCrossed(t *testing.T) {
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D([2][2][2]float64{})
	if f.NumberElements() != 0 {
		t.Fatalf("NumberElements = %d, want 0", f.NumberElements())
	}
}

func TestSurface3DCornerTriangle(t *testing.T) {
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D(cornerCell3D())
	if f.NumberElements() != 1 {
		t.Fatalf("NumberElements = %d, want 1", f.NumberElements())
	}
	if f.IsAmbiguous() {
		t.Fatal("single-corner cell reported as ambiguous")
	}

	// The cut triangle has vertices at the three edge midpoints around
	// the above corner; its centroid is symmetric in all coordinates and
	// inside the corner octant.
	c := f.Centroids()[0]
	for k := 0; k < 3; k++ {
		if c[k] <= 0 || c[k] >= 0.5 {
			t.Errorf("centroid[%d] = %g, want in (0, 0.5)", k, c[k])
		}
		if !almostEqual(c[k], c[0], 1e-12) {
			t.Errorf("centroid not symmetric: %v", c)
		}
	}

	// Normal points away from the below region, toward the above corner
	// at the origin, and its magnitude is the triangle area sqrt(3)/8.
	n := f.Normals()[0]
	for k := 0; k < 3; k++ {
		if n[k] >= 0 {
			t.Errorf("normal[%d] = %g, want < 0", k, n[k])
		}
	}
	if !almostEqual(norm(f.Normals(), 0), math.Sqrt(3)/8, 1e-9) {
		t.Errorf("normal magnitude = %g, want %g", norm(f.Normals(), 0), math.Sqrt(3)/8)
	}
}

func TestSurface3DIdempotent(t *testing.T) {
	cell := [2][2][2]float64{
		{{0.1, 0.9}, {0.3, 0.7}},
		{{0.8, 0.2}, {0.6, 0.4}},
	}
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D(cell)
	first := f.Centroids()
	firstNormals := f.Normals()
	f.FindSurface3D(cell)
	second := f.Centroids()
	secondNormals := f.Normals()

	if len(first) != len(second) {
		t.Fatalf("element counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		for k := 0; k < 3; k++ {
			if first[i][k] != second[i][k] {
				t.Errorf("centroid[%d][%d] differs: %g vs %g", i, k, first[i][k], second[i][k])
			}
			if firstNormals[i][k] != secondNormals[i][k] {
				t.Errorf("normal[%d][%d] differs: %g vs %g", i, k, firstNormals[i][k], secondNormals[i][k])
			}
		}
	}
}

func TestSurface3DCheckerboard(t *testing.T) {
	var cell [2][2][2]float64
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for c := 0; c < 2; c++ {
				if (a+b+c)%2 == 0 {
					cell[a][b][c] = 1
				}
			}
		}
	}
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D(cell)
	if !f.IsAmbiguous() {
		t.Fatal("checkerboard cell not reported as ambiguous")
	}
	// Four above corners in tetrahedral arrangement, one triangle each.
	if f.NumberElements() != 4 {
		t.Fatalf("NumberElements = %d, want 4", f.NumberElements())
	}
	for i, n := range f.Normals() {
		if norm(f.Normals(), i) <= 0 {
			t.Errorf("element %d normal %v has zero magnitude", i, n)
		}
	}
}

func TestSurface3DScaleInvariance(t *testing.T) {
	cell := cornerCell3D()
	unit := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	unit.FindSurface3D(cell)
	scaled := newFinder(t, 3, 0.5, []float64{2, 2, 2})
	scaled.FindSurface3D(cell)

	uc, sc := unit.Centroids()[0], scaled.Centroids()[0]
	for k := 0; k < 3; k++ {
		if !almostEqual(sc[k], 2*uc[k], 1e-12) {
			t.Errorf("centroid[%d] = %g, want %g", k, sc[k], 2*uc[k])
		}
	}
	// Doubling all spacings quadruples the area.
	if !almostEqual(norm(scaled.Normals(), 0), 4*norm(unit.Normals(), 0), 1e-9) {
		t.Errorf("normal magnitude = %g, want %g",
			norm(scaled.Normals(), 0), 4*norm(unit.Normals(), 0))
	}
}

func TestAccessorRangeErrors(t *testing.T) {
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D(cornerCell3D())

	if _, err := f.CentroidElement(-1, 0); err == nil {
		t.Error("expected error for negative element index")
	}
	if _, err := f.CentroidElement(1, 0); err == nil {
		t.Error("expected error for element index past the end")
	}
	if _, err := f.CentroidElement(0, 3); err == nil {
		t.Error("expected error for component index past the dimension")
	}
	if _, err := f.NormalElement(0, -1); err == nil {
		t.Error("expected error for negative component index")
	}
	if _, err := f.NormalElement(0, 2); err != nil {
		t.Errorf("valid access failed: %v", err)
	}
}

func TestTriangles(t *testing.T) {
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.FindSurface3D(cornerCell3D())
	tris := f.Triangles()
	if len(tris) != 3 {
		t.Fatalf("len(Triangles) = %d, want 3 for a triangular patch", len(tris))
	}
	for _, tri := range tris {
		for v := 0; v < 3; v++ {
			for k := 0; k < 3; k++ {
				if tri[v][k] < 0 || tri[v][k] > 0.5 {
					t.Errorf("triangle vertex coordinate %g outside the corner octant", tri[v][k])
				}
			}
		}
	}

	f2 := newFinder(t, 2, 0.5, []float64{1, 1})
	f2.FindSurface2D([2][2]float64{{0, 0}, {1, 1}})
	if f2.Triangles() != nil {
		t.Error("Triangles() should be nil for 2-D queries")
	}
}

func TestDebugTriangleStream(t *testing.T) {
	var buf bytes.Buffer
	f := newFinder(t, 3, 0.5, []float64{1, 1, 1})
	f.SetDebugOutput(&buf)
	f.FindSurface3DAt(cornerCell3D(), [3]float64{10, 20, 30})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("debug stream has %d rows, want 3", len(lines))
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 9 {
			t.Fatalf("debug row has %d fields, want 9: %q", len(fields), line)
		}
	}
	// Plain FindSurface3D never writes to the stream.
	buf.Reset()
	f.FindSurface3D(cornerCell3D())
	if buf.Len() != 0 {
		t.Error("FindSurface3D wrote to the debug stream")
	}
}

func cornerCell4D() [2][2][2][2]float64 {
	var cell [2][2][2][2]float64
	cell[0][0][0][0] = 1
	return cell
}

func TestSurface4DNotCrossed(t *testing.T) {
	f := newFinder(t, 4, 0.5, []float64{1, 1, 1, 1})
	f.FindSurface4D([2][2][2][2]float64{})
	if f.NumberElements() != 0 {
		t.Fatalf("NumberElements = %d, want 0", f.NumberElements())
	}
}

func TestSurface4DCornerPiece(t *testing.T) {
	f := newFinder(t, 4, 0.5, []float64{1, 1, 1, 1})
	f.FindSurface4D(cornerCell4D())
	if f.NumberElements() != 1 {
		t.Fatalf("NumberElements = %d, want 1", f.NumberElements())
	}
	if f.IsAmbiguous() {
		t.Fatal("single-corner hypercube reported as ambiguous")
	}
	c := f.Centroids()[0]
	for k := 0; k < 4; k++ {
		if c[k] <= 0 || c[k] >= 0.5 {
			t.Errorf("centroid[%d] = %g, want in (0, 0.5)", k, c[k])
		}
		if !almostEqual(c[k], c[0], 1e-12) {
			t.Errorf("centroid not symmetric: %v", c)
		}
	}
	n := f.Normals()[0]
	for k := 0; k < 4; k++ {
		if n[k] >= 0 {
			t.Errorf("normal[%d] = %g, want < 0", k, n[k])
		}
	}
	if norm(f.Normals(), 0) <= 0 {
		t.Fatal("zero-magnitude 4-D normal")
	}
}

func TestSurface4DIdempotent(t *testing.T) {
	f := newFinder(t, 4, 0.5, []float64{1, 1, 1, 1})
	f.FindSurface4D(cornerCell4D())
	first := f.Centroids()
	f.FindSurface4D(cornerCell4D())
	second := f.Centroids()
	if len(first) != len(second) {
		t.Fatalf("element counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		for k := 0; k < 4; k++ {
			if first[i][k] != second[i][k] {
				t.Errorf("centroid[%d][%d] differs: %g vs %g", i, k, first[i][k], second[i][k])
			}
		}
	}
}
