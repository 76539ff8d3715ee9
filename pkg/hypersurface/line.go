package hypersurface

// Line is an oriented cut segment found on one 2-D face of a cell. The
// two constant coordinate indices identify the face it lives on; the
// outside point is a reference position on the below-threshold side used
// to orient normals.
type Line struct {
	element
	start   Vec
	end     Vec
	outside Vec

	constIdx [2]int
	x1, x2   int
}

// init sets the segment endpoints, the outside reference point, and the
// face identity. The two free coordinate indices are derived from the
// constant pair in ascending order.
func (l *Line) init(points [2]Vec, outside Vec, constIdx [2]int) {
	l.start = points[0]
	l.end = points[1]
	l.outside = outside
	l.constIdx = constIdx
	n := 0
	for i := 0; i < dim; i++ {
		if i == constIdx[0] || i == constIdx[1] {
			continue
		}
		if n == 0 {
			l.x1 = i
		} else {
			l.x2 = i
		}
		n++
	}
	l.resetCache()
}

// flip swaps the segment orientation. Chaining into a polygon flips
// candidate lines so that consecutive lines share endpoints; centroid
// and normal are orientation-independent (the normal direction is fixed
// by the outside point), so the cache survives.
func (l *Line) flip() {
	l.start, l.end = l.end, l.start
}

// Start returns the segment start point in ambient coordinates.
func (l *Line) Start() Vec { return l.start }

// End returns the segment end point in ambient coordinates.
func (l *Line) End() Vec { return l.end }

// Outside returns the below-threshold reference point.
func (l *Line) Outside() Vec { return l.outside }

// Centroid returns the segment midpoint.
func (l *Line) Centroid() Vec {
	if !l.centroidOK {
		for i := 0; i < dim; i++ {
			l.centroid[i] = 0.5 * (l.start[i] + l.end[i])
		}
		l.centroidOK = true
	}
	return l.centroid
}

// Normal returns the segment normal: the edge vector rotated a quarter
// turn within the face plane, flipped to point away from the outside
// point. Its magnitude equals the segment length.
func (l *Line) Normal() Vec {
	if l.normalOK {
		return l.normal
	}
	c := l.Centroid()
	var n Vec
	n[l.x1] = -(l.end[l.x2] - l.start[l.x2])
	n[l.x2] = l.end[l.x1] - l.start[l.x1]
	var vout Vec
	for i := 0; i < dim; i++ {
		vout[i] = l.outside[i] - c[i]
	}
	flipOutward(&n, vout)
	l.normal = n
	l.normalOK = true
	return n
}
