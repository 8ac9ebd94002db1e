// Package crystal reconstructs the boundary of a convex polyhedron from the
// half-spaces that bound it.
//
// Each plane is a single vector: its direction is the outward normal and the
// plane passes through the vector's own tip, so its distance from the origin
// is the vector's length. Assemble traces the polygon every plane carves out
// of the solid by walking its edges one nearest-plane query at a time, and
// stitches the polygons into an unwelded mesh.
//
// The origin must lie strictly inside the solid.
package crystal
