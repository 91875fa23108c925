// seisnmo applies normal moveout correction with a stretch mute. The
// velocity is either one flat function or the nearest of several
// control-location functions by trace midpoint. Traces are corrected
// in parallel batches; the output keeps the input order.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/seiskit/seiskit/flow"
	"github.com/seiskit/seiskit/signal"
	"github.com/seiskit/seiskit/spatial"
	"github.com/seiskit/seiskit/trace"
)

const batchSize = 512

func main() {
	var (
		jobPath   = flag.String("job", "", "YAML job parameter file")
		input     = flag.String("in", "", "input spool (path or s3://bucket/key)")
		output    = flag.String("out", "", "output spool")
		codecName = flag.String("codec", "", "output compression: none, lz4 or zstd (default: input codec)")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "seisnmo: -in and -out are required")
		flag.Usage()
		os.Exit(2)
	}
	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "seisnmo: -job with nmo velocity picks is required")
		os.Exit(2)
	}

	job, err := flow.Load(*jobPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisnmo:", err)
		os.Exit(1)
	}
	level, err := job.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisnmo:", err)
		os.Exit(1)
	}
	log := flow.NewTextLogger(level).WithUtility("seisnmo")

	if err := run(context.Background(), log, job, *input, *output, *codecName); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type task struct {
	tr  *trace.Trace
	nmo *signal.NMO
}

func run(ctx context.Context, log *flow.Logger, job *flow.Job, input, output, codecName string) error {
	pick, functions, err := picker(job.NMO)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "velocity functions loaded", "functions", functions)

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

	prog := flow.NewProgress(log.WithSpool(input), "nmo", 0)
	batch := make([]task, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		pool := flow.NewPool(ctx, job.Workers)
		for _, t := range batch {
			pool.Go(func(ctx context.Context) error {
				if t.tr.Kill {
					return nil
				}
				t.tr.Samples = t.nmo.Correct(nil, t.tr.Samples, t.tr.DtSec(), t.tr.OffsetAbs())
				return nil
			})
		}
		if err := pool.Wait(); err != nil {
			return err
		}
		for _, t := range batch {
			if err := w.Append(t.tr); err != nil {
				return err
			}
		}
		prog.Add(ctx, len(batch))
		batch = batch[:0]
		return nil
	}

	err = r.Each(func(tr *trace.Trace) error {
		batch = append(batch, task{tr: tr, nmo: pick(tr)})
		if len(batch) == batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	prog.Done(ctx)
	return w.Close()
}

// picker builds the per-trace moveout lookup: one flat function, or
// the nearest control-location function by trace midpoint. The lookup
// carries searcher state and must be called from the reader loop, not
// from workers.
func picker(p flow.NMOParams) (func(*trace.Trace) *signal.NMO, int, error) {
	if len(p.Functions) == 0 {
		vel, err := signal.NewVelocity(p.VelocityTimes, p.VelocityValues)
		if err != nil {
			return nil, 0, err
		}
		nmo, err := signal.NewNMO(vel, p.Stretch)
		if err != nil {
			return nil, 0, err
		}
		return func(*trace.Trace) *signal.NMO { return nmo }, 1, nil
	}
	if len(p.VelocityTimes) > 0 || len(p.VelocityValues) > 0 {
		return nil, 0, fmt.Errorf("nmo: give velocity_times/velocity_values or functions, not both")
	}

	xs := make([]float64, len(p.Functions))
	ys := make([]float64, len(p.Functions))
	nmos := make([]*signal.NMO, len(p.Functions))
	for i, fn := range p.Functions {
		vel, err := signal.NewVelocity(fn.Times, fn.Values)
		if err != nil {
			return nil, 0, fmt.Errorf("nmo: function %d: %w", i, err)
		}
		if nmos[i], err = signal.NewNMO(vel, p.Stretch); err != nil {
			return nil, 0, err
		}
		xs[i], ys[i] = fn.X, fn.Y
	}

	pts, err := spatial.NewPoints(xs, ys)
	if err != nil {
		return nil, 0, err
	}
	tree, err := spatial.NewTree(pts, spatial.DispersedOrder)
	if err != nil {
		return nil, 0, err
	}
	cfg := spatial.DefaultSearchConfig()
	cfg.Radius = pickSpacing(xs, ys)
	cfg.Carry = true
	search, err := spatial.NewSearcher(tree, cfg)
	if err != nil {
		return nil, 0, err
	}

	return func(tr *trace.Trace) *signal.NMO {
		res := search.Find([]float64{tr.MidX(), tr.MidY()})
		return nmos[res.Elem]
	}, len(nmos), nil
}

// pickSpacing estimates the control-point spacing for the first
// search radius: the side of an even spread over the bounding box,
// falling back to the span for collinear picks and to 1 when all
// picks coincide.
func pickSpacing(xs, ys []float64) float64 {
	spanX := floats.Max(xs) - floats.Min(xs)
	spanY := floats.Max(ys) - floats.Min(ys)
	s := math.Sqrt(spanX * spanY / float64(len(xs)))
	if s <= 0 {
		s = math.Max(spanX, spanY)
	}
	if s <= 0 {
		s = 1
	}
	return s
}
