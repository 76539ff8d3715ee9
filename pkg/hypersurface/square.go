package hypersurface

import "fmt"

// maxCuts is the largest number of edge crossings a square can have.
const maxCuts = 4

// Square is a 2-D grid cell: four corner values on one face of a larger
// cell (or the whole cell in a 2-D query). It finds where the threshold
// crosses its edges and assembles the crossings into cut lines.
//
// Corner indexing is points[a][b] where a steps along the first free
// axis (x1) and b along the second (x2).
type Square struct {
	points     [steps][steps]float64
	cuts       [maxCuts][2]float64
	out        [2][2]float64
	constIdx   [2]int
	constValue [2]float64
	x1, x2     int
	dx         Vec

	numberCuts  int
	lines       [2]Line
	numberLines int
	ambiguous   bool
}

// init resets the square for a new query. constIdx and constValue pin
// the two coordinates held fixed on this face; dx carries the physical
// edge lengths of all four axes.
func (s *Square) init(points [steps][steps]float64, constIdx [2]int, constValue [2]float64, dx Vec) {
	s.points = points
	s.constIdx = constIdx
	s.constValue = constValue
	s.dx = dx
	n := 0
	for i := 0; i < dim; i++ {
		if i == constIdx[0] || i == constIdx[1] {
			continue
		}
		if n == 0 {
			s.x1 = i
		} else {
			s.x2 = i
		}
		n++
	}
	s.ambiguous = false
	s.numberCuts = 0
	s.numberLines = 0
}

// isAmbiguous reports whether the last query hit the 4-cut saddle case.
func (s *Square) isAmbiguous() bool { return s.ambiguous }

// constructLines finds the cut lines where the field crosses value
// within this square: none, or one (2 cuts), or two (4-cut saddle).
func (s *Square) constructLines(value float64) {
	// Classify the corners into a 4-bit mask. All same side means the
	// threshold cannot cross this square.
	mask := 0
	if s.points[0][0] >= value {
		mask |= 1
	}
	if s.points[0][1] >= value {
		mask |= 2
	}
	if s.points[1][0] >= value {
		mask |= 4
	}
	if s.points[1][1] >= value {
		mask |= 8
	}
	if mask == 0 || mask == 15 {
		s.numberLines = 0
		return
	}

	s.numberCuts = 0
	s.endsOfEdge(value)
	if s.numberCuts > 0 {
		s.findOutside(value)
	}

	s.numberLines = 0
	for i := 0; i < s.numberCuts; i += 2 {
		var pts [2]Vec
		var out Vec
		pts[0][s.x1] = s.cuts[i][0]
		pts[0][s.x2] = s.cuts[i][1]
		pts[1][s.x1] = s.cuts[i+1][0]
		pts[1][s.x2] = s.cuts[i+1][1]
		out[s.x1] = s.out[i/2][0]
		out[s.x2] = s.out[i/2][1]
		for k := 0; k < 2; k++ {
			pts[0][s.constIdx[k]] = s.constValue[k]
			pts[1][s.constIdx[k]] = s.constValue[k]
			out[s.constIdx[k]] = s.constValue[k]
		}
		s.lines[s.numberLines].init(pts, out, s.constIdx)
		s.numberLines++
	}
}

func (s *Square) addCut(u, v float64) {
	s.cuts[s.numberCuts][0] = u
	s.cuts[s.numberCuts][1] = v
	s.numberCuts++
}

// endsOfEdge records the cut point on each of the four edges the
// threshold crosses. A crossing is a strict sign change of the corner
// values relative to the threshold; a corner sitting exactly on the
// threshold counts as a crossing only when the opposite corner is below,
// and its cut point is nudged off the corner by AlmostZero/AlmostOne.
func (s *Square) endsOfEdge(value float64) {
	v00 := s.points[0][0] - value
	v01 := s.points[0][1] - value
	v10 := s.points[1][0] - value
	v11 := s.points[1][1] - value

	// Edge (0,0)-(1,0): x1 varies at x2 = 0.
	switch {
	case v00*v10 < 0:
		s.addCut(v00/(s.points[0][0]-s.points[1][0])*s.dx[s.x1], 0)
	case s.points[0][0] == value && s.points[1][0] < value:
		s.addCut(AlmostZero*s.dx[s.x1], 0)
	case s.points[1][0] == value && s.points[0][0] < value:
		s.addCut(AlmostOne*s.dx[s.x1], 0)
	}

	// Edge (0,0)-(0,1): x2 varies at x1 = 0.
	switch {
	case v00*v01 < 0:
		s.addCut(0, v00/(s.points[0][0]-s.points[0][1])*s.dx[s.x2])
	case s.points[0][0] == value && s.points[0][1] < value:
		s.addCut(0, AlmostZero*s.dx[s.x2])
	case s.points[0][1] == value && s.points[0][0] < value:
		s.addCut(0, AlmostOne*s.dx[s.x2])
	}

	// Edge (1,0)-(1,1): x2 varies at x1 = dx.
	switch {
	case v10*v11 < 0:
		s.addCut(s.dx[s.x1], v10/(s.points[1][0]-s.points[1][1])*s.dx[s.x2])
	case s.points[1][0] == value && s.points[1][1] < value:
		s.addCut(s.dx[s.x1], AlmostZero*s.dx[s.x2])
	case s.points[1][1] == value && s.points[1][0] < value:
		s.addCut(s.dx[s.x1], AlmostOne*s.dx[s.x2])
	}

	// Edge (0,1)-(1,1): x1 varies at x2 = dx.
	switch {
	case v01*v11 < 0:
		s.addCut(v01/(s.points[0][1]-s.points[1][1])*s.dx[s.x1], s.dx[s.x2])
	case s.points[0][1] == value && s.points[1][1] < value:
		s.addCut(AlmostZero*s.dx[s.x1], s.dx[s.x2])
	case s.points[1][1] == value && s.points[0][1] < value:
		s.addCut(AlmostOne*s.dx[s.x1], s.dx[s.x2])
	}

	if s.numberCuts != 0 && s.numberCuts != 2 && s.numberCuts != 4 {
		panic(fmt.Sprintf("hypersurface: square produced %d edge cuts, want 0, 2 or 4", s.numberCuts))
	}
}

// findOutside fills in the outside reference point for each cut line.
// With two cuts it is the mean position of the below-threshold corners.
// Four cuts are the ambiguous saddle: the value at the cell center
// decides which diagonal pair of corners is connected. The default cut
// pairing is "\\"; when the center agrees in sign with corner (0,0) the
// pairing switches to "//" by swapping the middle cuts. A center sitting
// exactly on the threshold takes the above-or-at branch.
func (s *Square) findOutside(value float64) {
	if s.numberCuts == 4 {
		s.ambiguous = true
		middle := 0.25 * (s.points[0][0] + s.points[0][1] + s.points[1][0] + s.points[1][1])
		if (s.points[0][0] < value && middle < value) ||
			(s.points[0][0] > value && middle > value) {
			s.cuts[1], s.cuts[2] = s.cuts[2], s.cuts[1]
		}
		if middle < value {
			// The center is below, so it sits outside both lines.
			s.out[0][0] = 0.5 * s.dx[s.x1]
			s.out[0][1] = 0.5 * s.dx[s.x2]
			s.out[1] = s.out[0]
		} else if s.points[0][0] < value {
			// Cuts are "\\": corners (0,0) and (1,1) are outside.
			s.out[0][0] = 0
			s.out[0][1] = 0
			s.out[1][0] = s.dx[s.x1]
			s.out[1][1] = s.dx[s.x2]
		} else {
			// Cuts are "//": corners (1,0) and (0,1) are outside.
			s.out[0][0] = s.dx[s.x1]
			s.out[0][1] = 0
			s.out[1][0] = 0
			s.out[1][1] = s.dx[s.x2]
		}
		return
	}

	s.out[0][0] = 0
	s.out[0][1] = 0
	numberOut := 0
	if s.points[0][0] < value {
		numberOut++
	}
	if s.points[0][1] < value {
		s.out[0][1] += s.dx[s.x2]
		numberOut++
	}
	if s.points[1][0] < value {
		s.out[0][0] += s.dx[s.x1]
		numberOut++
	}
	if s.points[1][1] < value {
		s.out[0][0] += s.dx[s.x1]
		s.out[0][1] += s.dx[s.x2]
		numberOut++
	}
	if numberOut > 0 {
		s.out[0][0] /= float64(numberOut)
		s.out[0][1] /= float64(numberOut)
	}
}
