// seisdatum moves traces from the recording surface to a processing
// datum. Each trace is shifted by the vertical travel time between
// the source and receiver elevations and the datum, at the
// replacement velocity. The datum is either a fixed elevation or a
// floating surface: station elevations box-averaged onto a grid and
// bilinearly interpolated under each position.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/seiskit/seiskit/flow"
	"github.com/seiskit/seiskit/geom"
	"github.com/seiskit/seiskit/signal"
	"github.com/seiskit/seiskit/spatial"
	"github.com/seiskit/seiskit/trace"
)

func main() {
	var (
		jobPath   = flag.String("job", "", "YAML job parameter file")
		input     = flag.String("in", "", "input spool (path or s3://bucket/key)")
		output    = flag.String("out", "", "output spool")
		codecName = flag.String("codec", "", "output compression: none, lz4 or zstd (default: input codec)")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "seisdatum: -in and -out are required")
		flag.Usage()
		os.Exit(2)
	}
	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "seisdatum: -job with datum parameters is required")
		os.Exit(2)
	}

	job, err := flow.Load(*jobPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisdatum:", err)
		os.Exit(1)
	}
	level, err := job.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisdatum:", err)
		os.Exit(1)
	}
	log := flow.NewTextLogger(level).WithUtility("seisdatum")

	if err := run(context.Background(), log, job, *input, *output, *codecName); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// datum evaluates the output datum elevation under a surface position.
type datum struct {
	elev float64
	grid *geom.Grid
}

func (d *datum) at(x, y float64) float64 {
	if d.grid != nil {
		return d.grid.At(x, y)
	}
	return d.elev
}

func run(ctx context.Context, log *flow.Logger, job *flow.Job, input, output, codecName string) error {
	p := job.Datum
	if p.ReplacementVelocity <= 0 {
		return fmt.Errorf("datum: replacement_velocity must be positive, got %v", p.ReplacementVelocity)
	}

	d := &datum{elev: p.Elevation}
	if p.GridCell > 0 {
		if p.Stations == "" {
			return fmt.Errorf("datum: a floating datum (grid_cell > 0) needs a station table")
		}
		if p.Radius <= 0 {
			return fmt.Errorf("datum: radius must be positive, got %v", p.Radius)
		}
		table, err := geom.OpenTable(p.Stations)
		if err != nil {
			return err
		}
		if table.Len() == 0 {
			return fmt.Errorf("datum: station table %s is empty", p.Stations)
		}
		if d.grid, err = floatingDatum(table, p.GridCell, p.Radius); err != nil {
			return err
		}
		log.InfoContext(ctx, "floating datum gridded",
			"stations", table.Len(), "rows", d.grid.Rows(), "cols", d.grid.Cols())
	}

	r, closer, err := flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	defer closer.Close()

	codec := r.Codec()
	if codecName != "" {
		if codec, err = trace.ParseCompression(codecName); err != nil {
			return err
		}
	}
	w, err := flow.CreateSpool(ctx, output, job.S3, codec)
	if err != nil {
		return err
	}

	prog := flow.NewProgress(log.WithSpool(output), "shift", 0)
	err = r.Each(func(tr *trace.Trace) error {
		// Positive shift means the surface is above the datum and
		// events arrive late, so that much time comes off the top.
		shift := ((tr.SourceElev - d.at(tr.SourceX, tr.SourceY)) +
			(tr.ReceiverElev - d.at(tr.ReceiverX, tr.ReceiverY))) / p.ReplacementVelocity
		if shift != 0 {
			if !tr.Kill {
				tr.Samples = signal.Shift(nil, tr.Samples, -shift/tr.DtSec())
			}
			tr.Static += -shift * 1000
		}
		if err := w.Append(tr); err != nil {
			return err
		}
		prog.Add(ctx, 1)
		return nil
	})
	if err != nil {
		return err
	}
	prog.Done(ctx)
	return w.Close()
}

// floatingDatum grids station elevations over the table's bounding
// box: each node averages the stations within radius of it, and nodes
// no station box reaches take the nearest one. Bilinear interpolation
// across the nodes then gives a smooth surface even where stations
// are sparse.
func floatingDatum(table *geom.Table, cell, radius float64) (*geom.Grid, error) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < table.Len(); i++ {
		st := table.Station(i)
		minX = math.Min(minX, st.X)
		maxX = math.Max(maxX, st.X)
		minY = math.Min(minY, st.Y)
		maxY = math.Max(maxY, st.Y)
	}
	cols := int(math.Ceil((maxX-minX)/cell)) + 1
	rows := int(math.Ceil((maxY-minY)/cell)) + 1

	grid, err := geom.NewGrid(minX, minY, cell, cell, rows, cols)
	if err != nil {
		return nil, err
	}
	tree, err := spatial.NewTree(table, spatial.DispersedOrder)
	if err != nil {
		return nil, err
	}
	cfg := spatial.DefaultSearchConfig()
	cfg.Radius = radius
	cfg.Carry = true
	search, err := spatial.NewSearcher(tree, cfg)
	if err != nil {
		return nil, err
	}
	var ids []int
	grid.Fill(func(x, y float64) float64 {
		box := spatial.Box(
			[]float64{x - radius, y - radius},
			[]float64{x + radius, y + radius},
		)
		ids = tree.FindIn(box, ids[:0])
		if len(ids) == 0 {
			res := search.Find([]float64{x, y})
			if res.Count == 0 {
				return 0
			}
			return table.Station(res.Elem).Elevation
		}
		sum := 0.0
		for _, id := range ids {
			sum += table.Station(id).Elevation
		}
		return sum / float64(len(ids))
	})
	return grid, nil
}
