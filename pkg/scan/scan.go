// Package scan walks a sampled scalar field cell by cell and collects
// the constant-value surface elements the hypersurface kernel finds.
// Cells are independent, so the grid is partitioned along its outermost
// axis across workers, each owning a private Finder.
package scan

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/chazu/freezeout/pkg/field"
	"github.com/chazu/freezeout/pkg/hypersurface"
)

// Element is one surface piece in absolute grid coordinates.
type Element struct {
	// Centroid is the element's weighted geometric center.
	Centroid []float64
	// Normal points away from the below-threshold region; its magnitude
	// is the element's length, area, or volume.
	Normal []float64
	// Aux holds auxiliary quantities sampled at the centroid, when an
	// Aux lookup was configured.
	Aux []float64
}

// Surface is the result of one grid scan.
type Surface struct {
	Dim      int
	Elements []Element
	// Triangles holds the fan triangulation of every 3-D element in
	// absolute coordinates, when collection was requested.
	Triangles [][3][3]float64
}

// Area returns the total surface measure: the sum of the element normal
// magnitudes (lengths in 2-D, areas in 3-D, volumes in 4-D).
func (s *Surface) Area() float64 {
	var total float64
	for _, e := range s.Elements {
		total += floats.Norm(e.Normal, 2)
	}
	return total
}

// Options tune a Scanner.
type Options struct {
	// Workers is the number of concurrent scan goroutines. Zero or
	// negative means one.
	Workers int
	// Log receives scan progress; nil discards it.
	Log *logrus.Logger
	// Aux, when set, is sampled at every element centroid and stored on
	// the element. It must be safe for concurrent calls.
	Aux func(p []float64) []float64
	// CollectTriangles keeps the triangle fans of 3-D scans for export.
	CollectTriangles bool
}

// Scanner extracts surfaces from sampled fields at a fixed threshold.
type Scanner struct {
	threshold float64
	opts      Options
}

// New returns a Scanner for the given threshold value.
func New(threshold float64, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
		opts.Log.SetOutput(io.Discard)
	}
	return &Scanner{threshold: threshold, opts: opts}
}

// chunk is the per-worker share of the scan and its results.
type chunk struct {
	lo, hi    int // cell range along axis 0
	elements  []Element
	triangles [][3][3]float64
}

// Scan samples f on g and extracts the threshold surface. The field and
// grid dimensions must agree.
func (s *Scanner) Scan(f field.Field, g field.Grid) (*Surface, error) {
	start := time.Now()
	samples, err := g.Sample(f)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	outer := g.Cells(0)
	workers := s.opts.Workers
	if workers > outer {
		workers = outer
	}
	chunks := make([]chunk, workers)
	per := outer / workers
	extra := outer % workers
	lo := 0
	for w := range chunks {
		hi := lo + per
		if w < extra {
			hi++
		}
		chunks[w] = chunk{lo: lo, hi: hi}
		lo = hi
	}

	var wg sync.WaitGroup
	for w := range chunks {
		wg.Add(1)
		go func(c *chunk) {
			defer wg.Done()
			s.scanChunk(samples, c)
		}(&chunks[w])
	}
	wg.Wait()

	surface := &Surface{Dim: g.Dim()}
	for _, c := range chunks {
		surface.Elements = append(surface.Elements, c.elements...)
		surface.Triangles = append(surface.Triangles, c.triangles...)
	}

	cells := 1
	for k := 0; k < g.Dim(); k++ {
		cells *= g.Cells(k)
	}
	s.opts.Log.WithFields(logrus.Fields{
		"dim":      g.Dim(),
		"cells":    cells,
		"elements": len(surface.Elements),
		"workers":  workers,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("surface scan complete")
	return surface, nil
}

// scanChunk walks the cells in c's share of axis 0 with a worker-private
// Finder and records the elements found.
func (s *Scanner) scanChunk(samples *field.Samples, c *chunk) {
	g := samples.Grid
	n := g.Dim()
	finder := hypersurface.NewFinder()
	if err := finder.Init(n, s.threshold, g.Spacing); err != nil {
		// Grid validation already passed, so this is a programming error.
		panic(err)
	}
	idx := make([]int, n)
	for i := c.lo; i < c.hi; i++ {
		idx[0] = i
		switch n {
		case 2:
			for j := 0; j < g.Cells(1); j++ {
				idx[1] = j
				finder.FindSurface2D(samples.Cell2(i, j))
				s.collect(finder, g, idx, c)
			}
		case 3:
			for j := 0; j < g.Cells(1); j++ {
				idx[1] = j
				for k := 0; k < g.Cells(2); k++ {
					idx[2] = k
					finder.FindSurface3D(samples.Cell3(i, j, k))
					s.collect(finder, g, idx, c)
				}
			}
		case 4:
			for j := 0; j < g.Cells(1); j++ {
				idx[1] = j
				for k := 0; k < g.Cells(2); k++ {
					idx[2] = k
					for l := 0; l < g.Cells(3); l++ {
						idx[3] = l
						finder.FindSurface4D(samples.Cell4(i, j, k, l))
						s.collect(finder, g, idx, c)
					}
				}
			}
		}
	}
}

// collect copies the finder's last-query results into the chunk,
// shifting centroids from cell-relative to absolute coordinates.
func (s *Scanner) collect(finder *hypersurface.Finder, g field.Grid, idx []int, c *chunk) {
	if finder.NumberElements() == 0 {
		return
	}
	n := g.Dim()
	origin := make([]float64, n)
	g.Position(idx, origin)

	centroids := finder.Centroids()
	normals := finder.Normals()
	for e := range centroids {
		floats.Add(centroids[e], origin)
		el := Element{Centroid: centroids[e], Normal: normals[e]}
		if s.opts.Aux != nil {
			el.Aux = s.opts.Aux(el.Centroid)
		}
		c.elements = append(c.elements, el)
	}

	if s.opts.CollectTriangles && n == 3 {
		for _, tri := range finder.Triangles() {
			for v := 0; v < 3; v++ {
				floats.Add(tri[v][:], origin)
			}
			c.triangles = append(c.triangles, tri)
		}
	}
}
