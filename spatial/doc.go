// Package spatial implements the k-d tree index used by the seiskit
// command-line utilities to resolve trace headers against survey geometry.
//
// The tree indexes a fixed set of points with up to nine float64 coordinates
// each and answers three kinds of questions:
//
//   - which elements fall inside an axis-aligned box (FindIn)
//   - which element inside a box lies closest to a target (Nearest)
//   - which element lies closest to a target anywhere in the survey,
//     found by growing a box around the target (Searcher.Find)
//
// Points are supplied as parallel coordinate columns and are never copied:
// the tree stores element ids and reads coordinates through a Source.
// Build once, query from as many goroutines as you like; the tree is
// immutable after construction.
//
// Basic usage:
//
//	pts, err := spatial.NewPoints(xs, ys)
//	tree, err := spatial.NewTree(pts, spatial.DispersedOrder)
//	ids := tree.FindIn(box, nil)
//	m := tree.Nearest([]float64{x, y}, box, nil)
//	// m.Count == 0 means nothing inside the box
package spatial
