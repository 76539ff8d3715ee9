package field

import "fmt"

// Grid describes a regular sampling grid: node i along axis k sits at
// Origin[k] + i·Spacing[k], with Shape[k] nodes on that axis. Axis 0 is
// conventionally time in 4-D grids.
type Grid struct {
	Origin  []float64
	Spacing []float64
	Shape   []int
}

// Dim returns the grid dimension.
func (g Grid) Dim() int { return len(g.Shape) }

// Validate checks the grid description: 2 to 4 axes, matching slice
// lengths, at least two nodes per axis, positive spacing.
func (g Grid) Validate() error {
	n := g.Dim()
	if n < 2 || n > 4 {
		return fmt.Errorf("field: grid dimension %d, want 2, 3 or 4", n)
	}
	if len(g.Origin) != n || len(g.Spacing) != n {
		return fmt.Errorf("field: grid origin/spacing/shape lengths disagree: %d/%d/%d",
			len(g.Origin), len(g.Spacing), n)
	}
	for k := 0; k < n; k++ {
		if g.Shape[k] < 2 {
			return fmt.Errorf("field: grid axis %d has %d nodes, want at least 2", k, g.Shape[k])
		}
		if g.Spacing[k] <= 0 {
			return fmt.Errorf("field: grid axis %d spacing %g, want > 0", k, g.Spacing[k])
		}
	}
	return nil
}

// Cells returns the number of cells along the given axis.
func (g Grid) Cells(axis int) int { return g.Shape[axis] - 1 }

// Position writes the coordinates of the node at idx into dst and
// returns it. dst must have length Dim().
func (g Grid) Position(idx []int, dst []float64) []float64 {
	for k := range idx {
		dst[k] = g.Origin[k] + float64(idx[k])*g.Spacing[k]
	}
	return dst
}

// Samples holds a field evaluated at every node of a grid.
type Samples struct {
	Grid   Grid
	data   []float64
	stride []int
}

// Sample evaluates f at every grid node. The field and grid dimensions
// must agree.
func (g Grid) Sample(f Field) (*Samples, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if f.Dim() != g.Dim() {
		return nil, fmt.Errorf("field: sampling a %d-D field on a %d-D grid", f.Dim(), g.Dim())
	}
	n := g.Dim()
	stride := make([]int, n)
	total := 1
	for k := n - 1; k >= 0; k-- {
		stride[k] = total
		total *= g.Shape[k]
	}
	s := &Samples{Grid: g, data: make([]float64, total), stride: stride}

	idx := make([]int, n)
	p := make([]float64, n)
	for flat := 0; flat < total; flat++ {
		g.Position(idx, p)
		s.data[flat] = f.At(p)
		// Odometer increment over the node indices, last axis fastest.
		for k := n - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < g.Shape[k] {
				break
			}
			idx[k] = 0
		}
	}
	return s, nil
}

func (s *Samples) at(idx ...int) float64 {
	flat := 0
	for k, i := range idx {
		flat += i * s.stride[k]
	}
	return s.data[flat]
}

// Cell2 returns the corner values of the 2-D cell whose low node is
// (i, j).
func (s *Samples) Cell2(i, j int) [2][2]float64 {
	var c [2][2]float64
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			c[a][b] = s.at(i+a, j+b)
		}
	}
	return c
}

// Cell3 returns the corner values of the 3-D cell whose low node is
// (i, j, k).
func (s *Samples) Cell3(i, j, k int) [2][2][2]float64 {
	var c [2][2][2]float64
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for d := 0; d < 2; d++ {
				c[a][b][d] = s.at(i+a, j+b, k+d)
			}
		}
	}
	return c
}

// Cell4 returns the corner values of the 4-D cell whose low node is
// (i, j, k, l).
func (s *Samples) Cell4(i, j, k, l int) [2][2][2][2]float64 {
	var c [2][2][2][2]float64
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for d := 0; d < 2; d++ {
				for e := 0; e < 2; e++ {
					c[a][b][d][e] = s.at(i+a, j+b, k+d, l+e)
				}
			}
		}
	}
	return c
}
