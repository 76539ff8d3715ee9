package hypersurface

import "math"

// maxPolyhedronPolygons bounds the faces of one polyhedron: the worst
// case is every polygon of every hyperface cube of one hypercube.
const maxPolyhedronPolygons = 24

// Polyhedron is a closed collection of polygons bounding one surface
// piece inside a 4-D cell. Adjacent polygons share boundary lines. The
// centroid is the volume-weighted mean of the tetrahedra formed by each
// polygon edge, that polygon's centroid, and the preliminary vertex
// mean; the normal is the sum of the outward 4-D wedge-product normals
// of those tetrahedra, whose magnitude equals the enclosed volume.
type Polyhedron struct {
	element
	polygons         [maxPolyhedronPolygons]*Polygon
	numberPolygons   int
	numberTetrahedra int
}

// init resets the polyhedron for a new cell.
func (p *Polyhedron) init() {
	p.numberPolygons = 0
	p.numberTetrahedra = 0
	p.resetCache()
}

// NumberPolygons returns how many polygons bound the polyhedron.
func (p *Polyhedron) NumberPolygons() int { return p.numberPolygons }

// Polygons returns the bounding polygons.
func (p *Polyhedron) Polygons() []*Polygon { return p.polygons[:p.numberPolygons] }

// addPolygon appends poly if it shares a boundary line with a polygon
// already collected, or unconditionally with noCheck set (the
// unambiguous single-polyhedron case). Reports whether it was taken.
func (p *Polyhedron) addPolygon(poly *Polygon, noCheck bool) bool {
	if noCheck || p.numberPolygons == 0 {
		p.polygons[p.numberPolygons] = poly
		p.numberPolygons++
		p.numberTetrahedra += poly.numberLines
		return true
	}
	for i := 0; i < p.numberPolygons; i++ {
		other := p.polygons[i]
		for j := 0; j < poly.numberLines; j++ {
			for k := 0; k < other.numberLines; k++ {
				if linesConnected(poly.lines[j], other.lines[k]) {
					p.polygons[p.numberPolygons] = poly
					p.numberPolygons++
					p.numberTetrahedra += poly.numberLines
					return true
				}
			}
		}
	}
	return false
}

// linesConnected reports whether two cut lines are the same edge shared
// by neighboring hyperface cubes. A shared edge is computed twice with
// identical (possibly swapped) endpoints, so comparing both endpoints of
// a against the start of b within Epsilon suffices.
func linesConnected(a, b *Line) bool {
	var d1, d2 float64
	for i := 0; i < dim; i++ {
		d1 += math.Abs(a.start[i] - b.start[i])
		d2 += math.Abs(a.end[i] - b.start[i])
	}
	return d1 < Epsilon || d2 < Epsilon
}

// tetrahedronNormal returns the generalized cross product of the three
// edge vectors spanning a tetrahedron, by cofactor expansion. The result
// is the tetrahedron's 4-D normal and its magnitude is the signed volume.
func tetrahedronNormal(v1, v2, v3 Vec) Vec {
	bc01 := v2[0]*v3[1] - v2[1]*v3[0]
	bc02 := v2[0]*v3[2] - v2[2]*v3[0]
	bc03 := v2[0]*v3[3] - v2[3]*v3[0]
	bc12 := v2[1]*v3[2] - v2[2]*v3[1]
	bc13 := v2[1]*v3[3] - v2[3]*v3[1]
	bc23 := v2[2]*v3[3] - v2[3]*v3[2]
	var n Vec
	n[0] = (v1[1]*bc23 - v1[2]*bc13 + v1[3]*bc12) / 6
	n[1] = -(v1[0]*bc23 - v1[2]*bc03 + v1[3]*bc02) / 6
	n[2] = (v1[0]*bc13 - v1[1]*bc03 + v1[3]*bc01) / 6
	n[3] = -(v1[0]*bc12 - v1[1]*bc02 + v1[2]*bc01) / 6
	return n
}

// Centroid returns the polyhedron centroid: the volume-weighted mean of
// the centroids of the tetrahedra spanned by each polygon edge, the
// polygon's centroid, and the preliminary vertex mean.
func (p *Polyhedron) Centroid() Vec {
	if p.centroidOK {
		return p.centroid
	}
	var mean Vec
	for i := 0; i < p.numberPolygons; i++ {
		poly := p.polygons[i]
		for j := 0; j < poly.numberLines; j++ {
			l := poly.lines[j]
			for k := 0; k < dim; k++ {
				mean[k] += l.start[k] + l.end[k]
			}
		}
	}
	for k := 0; k < dim; k++ {
		mean[k] /= 2 * float64(p.numberTetrahedra)
	}
	var sumUp Vec
	var sumDown float64
	for i := 0; i < p.numberPolygons; i++ {
		poly := p.polygons[i]
		cent := poly.Centroid()
		for j := 0; j < poly.numberLines; j++ {
			l := poly.lines[j]
			var a, b, cc, cm Vec
			for k := 0; k < dim; k++ {
				a[k] = l.start[k] - mean[k]
				b[k] = l.end[k] - mean[k]
				cc[k] = cent[k] - mean[k]
				cm[k] = 0.25 * (l.start[k] + l.end[k] + cent[k] + mean[k])
			}
			n := tetrahedronNormal(a, b, cc)
			var volume float64
			for k := 0; k < dim; k++ {
				volume += n[k] * n[k]
			}
			volume = math.Sqrt(volume)
			for k := 0; k < dim; k++ {
				sumUp[k] += volume * cm[k]
			}
			sumDown += volume
		}
	}
	for k := 0; k < dim; k++ {
		p.centroid[k] = sumUp[k] / sumDown
	}
	p.centroidOK = true
	return p.centroid
}

// Normal returns the polyhedron normal: the sum of the wedge-product
// normals of the tetrahedra anchored at the centroid, each flipped away
// from its line's outside point.
func (p *Polyhedron) Normal() Vec {
	if p.normalOK {
		return p.normal
	}
	c := p.Centroid()
	var total Vec
	for i := 0; i < p.numberPolygons; i++ {
		poly := p.polygons[i]
		cent := poly.Centroid()
		for j := 0; j < poly.numberLines; j++ {
			l := poly.lines[j]
			var a, b, cc, vout Vec
			for k := 0; k < dim; k++ {
				a[k] = l.start[k] - c[k]
				b[k] = l.end[k] - c[k]
				cc[k] = cent[k] - c[k]
				vout[k] = l.outside[k] - c[k]
			}
			n := tetrahedronNormal(a, b, cc)
			flipOutward(&n, vout)
			for k := 0; k < dim; k++ {
				total[k] += n[k]
			}
		}
	}
	p.normal = total
	p.normalOK = true
	return total
}
