package hypersurface

import (
	"fmt"
	"io"
	"math"
)

// maxLines bounds the number of lines one polygon can collect. A single
// cube face pass yields at most 12 lines; the bound leaves headroom for
// the chained polygons a hypercube hands to its polyhedra.
const maxLines = 24

// Polygon is an ordered, closed chain of cut lines bounding one surface
// patch inside a 3-D cell. Consecutive lines share an endpoint within
// Epsilon. The centroid is the (area-weighted) mean of its vertices and
// the normal is the sum of the outward triangle normals formed by each
// edge and the centroid; the normal's magnitude equals the patch area.
type Polygon struct {
	element
	lines       [maxLines]*Line
	numberLines int
	x1, x2, x3  int
	constIdx    int
}

// init resets the polygon for a new cell. constIdx pins the coordinate
// held fixed across the whole 3-D cell the polygon lives in.
func (p *Polygon) init(constIdx int) {
	p.constIdx = constIdx
	n := 0
	for i := 0; i < dim; i++ {
		if i == constIdx {
			continue
		}
		switch n {
		case 0:
			p.x1 = i
		case 1:
			p.x2 = i
		default:
			p.x3 = i
		}
		n++
	}
	p.numberLines = 0
	p.resetCache()
}

// addLine appends l if it chains onto the polygon's current endpoint,
// flipping l when its end rather than its start matches. With noCheck
// set (the unambiguous single-polygon case) the line is appended
// unconditionally. Reports whether the line was taken.
func (p *Polygon) addLine(l *Line, noCheck bool) bool {
	if noCheck || p.numberLines == 0 {
		p.lines[p.numberLines] = l
		p.numberLines++
		return true
	}
	last := p.lines[p.numberLines-1].end
	var d1, d2 float64
	for i := 0; i < dim; i++ {
		d1 += math.Abs(l.start[i] - last[i])
		d2 += math.Abs(l.end[i] - last[i])
	}
	if d1 >= Epsilon && d2 >= Epsilon {
		return false
	}
	if d2 < Epsilon {
		l.flip()
	}
	p.lines[p.numberLines] = l
	p.numberLines++
	return true
}

// NumberLines returns how many lines bound the polygon.
func (p *Polygon) NumberLines() int { return p.numberLines }

// Lines returns the polygon's boundary lines in chain order.
func (p *Polygon) Lines() []*Line { return p.lines[:p.numberLines] }

// Centroid returns the polygon centroid. A triangle uses the plain
// vertex mean. Larger polygons triangulate each edge against the raw
// vertex mean and average the triangle centroids weighted by area, which
// removes the bias of the raw mean on skewed polygons.
func (p *Polygon) Centroid() Vec {
	if p.centroidOK {
		return p.centroid
	}
	if p.numberLines < 3 {
		panic(fmt.Sprintf("hypersurface: polygon with %d lines cannot close", p.numberLines))
	}
	var mean Vec
	for i := 0; i < p.numberLines; i++ {
		l := p.lines[i]
		for k := 0; k < dim; k++ {
			mean[k] += l.start[k] + l.end[k]
		}
	}
	for k := 0; k < dim; k++ {
		mean[k] /= 2 * float64(p.numberLines)
	}
	if p.numberLines == 3 {
		p.centroid = mean
		p.centroidOK = true
		return mean
	}
	var sumUp Vec
	var sumDown float64
	for i := 0; i < p.numberLines; i++ {
		l := p.lines[i]
		var a, b, tc Vec
		for k := 0; k < dim; k++ {
			a[k] = l.start[k] - mean[k]
			b[k] = l.end[k] - mean[k]
			tc[k] = (l.start[k] + l.end[k] + mean[k]) / 3
		}
		area := 0.5 * math.Sqrt(
			sqr(a[p.x2]*b[p.x3]-a[p.x3]*b[p.x2])+
				sqr(a[p.x1]*b[p.x3]-a[p.x3]*b[p.x1])+
				sqr(a[p.x2]*b[p.x1]-a[p.x1]*b[p.x2]))
		for k := 0; k < dim; k++ {
			sumUp[k] += area * tc[k]
		}
		sumDown += area
	}
	for k := 0; k < dim; k++ {
		p.centroid[k] = sumUp[k] / sumDown
	}
	p.centroidOK = true
	return p.centroid
}

// Normal returns the polygon normal: the sum over boundary edges of the
// half cross product of the edge endpoints relative to the centroid,
// each triangle flipped away from its line's outside point.
func (p *Polygon) Normal() Vec {
	if p.normalOK {
		return p.normal
	}
	c := p.Centroid()
	var total Vec
	for i := 0; i < p.numberLines; i++ {
		l := p.lines[i]
		var a, b Vec
		for k := 0; k < dim; k++ {
			a[k] = l.start[k] - c[k]
			b[k] = l.end[k] - c[k]
		}
		var n Vec
		n[p.x1] = 0.5 * (a[p.x2]*b[p.x3] - a[p.x3]*b[p.x2])
		n[p.x2] = -0.5 * (a[p.x1]*b[p.x3] - a[p.x3]*b[p.x1])
		n[p.x3] = 0.5 * (a[p.x1]*b[p.x2] - a[p.x2]*b[p.x1])
		var vout Vec
		for k := 0; k < dim; k++ {
			vout[k] = l.outside[k] - c[k]
		}
		flipOutward(&n, vout)
		for k := 0; k < dim; k++ {
			total[k] += n[k]
		}
	}
	p.normal = total
	p.normalOK = true
	return total
}

// writeTriangles appends the polygon's fan triangulation to w as plain
// rows of nine coordinates (edge start, edge end, centroid), offset by
// position. This is the visualization side-channel; the geometric
// contract lives in Centroid and Normal.
func (p *Polygon) writeTriangles(w io.Writer, position Vec) error {
	c := p.Centroid()
	for i := 0; i < p.numberLines; i++ {
		l := p.lines[i]
		_, err := fmt.Fprintf(w, "%g %g %g %g %g %g %g %g %g\n",
			position[p.x1]+l.start[p.x1], position[p.x2]+l.start[p.x2], position[p.x3]+l.start[p.x3],
			position[p.x1]+l.end[p.x1], position[p.x2]+l.end[p.x2], position[p.x3]+l.end[p.x3],
			position[p.x1]+c[p.x1], position[p.x2]+c[p.x2], position[p.x3]+c[p.x3])
		if err != nil {
			return err
		}
	}
	return nil
}
