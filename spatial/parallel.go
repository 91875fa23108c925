package spatial

import "sync"

// NearestBatch answers one Nearest query per row of a flat row-major
// target array (rows × Dims) using multiple goroutines. Each worker
// handles a contiguous range of rows; workers <= 1 runs sequentially.
// Queries are read-only, so no synchronization beyond the final join is
// needed.
func (t *Tree) NearestBatch(targets []float64, rows int, box Extent, active []bool, workers int) []Match {
	out := make([]Match, rows)
	if workers <= 1 || rows <= 1 {
		for q := 0; q < rows; q++ {
			out[q] = t.Nearest(targets[q*t.dims:(q+1)*t.dims], box, active)
		}
		return out
	}

	var wg sync.WaitGroup
	rowsPerWorker := (rows + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > rows {
			endRow = rows
		}
		if startRow >= rows {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for q := start; q < end; q++ {
				out[q] = t.Nearest(targets[q*t.dims:(q+1)*t.dims], box, active)
			}
		}(startRow, endRow)
	}

	wg.Wait()
	return out
}

// FindBatch answers one expanding search per row of a flat row-major
// target array (rows × Dims). Each worker runs its own Searcher over the
// shared tree, so carried radii stay worker-local; workers <= 1 runs
// sequentially. Row ranges are contiguous to keep the carry effective on
// targets in acquisition order.
func FindBatch(tree *Tree, cfg SearchConfig, targets []float64, rows, workers int) ([]Result, error) {
	s, err := NewSearcher(tree, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]Result, rows)
	dims := tree.Dims()

	if workers <= 1 || rows <= 1 {
		for q := 0; q < rows; q++ {
			out[q] = s.Find(targets[q*dims : (q+1)*dims])
		}
		return out, nil
	}

	var wg sync.WaitGroup
	rowsPerWorker := (rows + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > rows {
			endRow = rows
		}
		if startRow >= rows {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			s, _ := NewSearcher(tree, cfg)
			for q := start; q < end; q++ {
				out[q] = s.Find(targets[q*dims : (q+1)*dims])
			}
		}(startRow, endRow)
	}

	wg.Wait()
	return out, nil
}
