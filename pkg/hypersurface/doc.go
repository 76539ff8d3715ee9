// Package hypersurface extracts constant-value surfaces from scalar
// fields sampled on regular grids in 2, 3, or 4 dimensions.
//
// The caller hands a Finder the field values at the corners of one grid
// cell at a time. If the threshold value crosses the cell, the Finder
// produces the surface elements describing the crossing: line segments
// in 2-D, polygons in 3-D, polyhedra in 4-D. Each element carries a
// centroid and a normal vector whose direction points away from the
// below-threshold region and whose magnitude equals the element's
// length, area, or volume.
//
// Cells are processed independently: the package makes no attempt to
// stitch elements from neighboring cells into a connected mesh, and
// gives no global topological guarantees. A Finder is cheap and keeps
// all per-query state internal, so the natural way to scan a large grid
// concurrently is one Finder per goroutine.
package hypersurface
