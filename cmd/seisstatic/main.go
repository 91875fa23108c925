// seisstatic estimates and applies surface-consistent residual
// statics. Pass one stacks a pilot trace per CDP, pass two
// cross-correlates every trace with its pilot over a window, then the
// measured lags decompose into one shift per source station and one
// per receiver station; pass three applies them. Smoothing the
// per-CDP lag profile separates structure (kept) from statics
// (removed).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/seiskit/seiskit/archive"
	"github.com/seiskit/seiskit/flow"
	"github.com/seiskit/seiskit/gather"
	"github.com/seiskit/seiskit/signal"
	"github.com/seiskit/seiskit/trace"
)

const batchSize = 512

func main() {
	var (
		jobPath   = flag.String("job", "", "YAML job parameter file")
		input     = flag.String("in", "", "input spool (path or s3://bucket/key)")
		output    = flag.String("out", "", "output spool")
		codecName = flag.String("codec", "", "output compression: none, lz4 or zstd (default: input codec)")
		statics   = flag.String("statics", "", "also write the station statics as CSV (path or s3://bucket/key)")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "seisstatic: -in and -out are required")
		flag.Usage()
		os.Exit(2)
	}
	if *jobPath == "" {
		fmt.Fprintln(os.Stderr, "seisstatic: -job with statics parameters is required")
		os.Exit(2)
	}

	job, err := flow.Load(*jobPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisstatic:", err)
		os.Exit(1)
	}
	level, err := job.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisstatic:", err)
		os.Exit(1)
	}
	log := flow.NewTextLogger(level).WithUtility("seisstatic")

	if err := run(context.Background(), log, job, *input, *output, *codecName, *statics); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type pilotCell struct {
	sum  []float64
	fold int32
}

// lagAcc accumulates lag observations for one station.
type lagAcc struct {
	sum float64
	n   float64
}

func (a lagAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / a.n
}

func run(ctx context.Context, log *flow.Logger, job *flow.Job, input, output, codecName, staticsPath string) error {
	p := job.Statics
	if p.WindowLength <= 0 {
		return fmt.Errorf("statics: window_length must be positive, got %v", p.WindowLength)
	}
	if p.MaxShift <= 0 {
		return fmt.Errorf("statics: max_shift must be positive, got %v", p.MaxShift)
	}

	// Pass 1: pilot stack per CDP.
	pilots, err := gather.New[pilotCell](1, p.MaxCDPs)
	if err != nil {
		return err
	}
	r, closer, err := flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	key := make([]float64, 1)
	err = r.Each(func(tr *trace.Trace) error {
		if tr.Kill {
			return nil
		}
		key[0] = float64(tr.CDP)
		cell, err := pilots.Get(key, func() pilotCell { return pilotCell{} })
		if err != nil {
			return err
		}
		if len(cell.sum) < tr.Ns() {
			grown := make([]float64, tr.Ns())
			copy(grown, cell.sum)
			cell.sum = grown
		}
		for i, s := range tr.Samples {
			cell.sum[i] += float64(s)
		}
		cell.fold++
		return nil
	})
	closer.Close()
	if err != nil {
		return err
	}
	inCodec := r.Codec()

	pilotTraces := make([][]float32, pilots.Len())
	for i := range pilotTraces {
		cell := pilots.Payload(i)
		s := make([]float32, len(cell.sum))
		for j, v := range cell.sum {
			s[j] = float32(v / float64(cell.fold))
		}
		pilotTraces[i] = s
	}
	log.InfoContext(ctx, "pilots stacked", "cdps", pilots.Len())

	// Pass 2: lag per trace against its pilot.
	var (
		lags   []float64
		pos    []int32
		srcIDs []int32
		rcvIDs []int32
		dtMS   float64
	)
	r, closer, err = flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	corr := flow.NewProgress(log.WithSpool(input), "correlate", 0)
	batch := make([]*trace.Trace, 0, batchSize)

	correlate := func() error {
		if len(batch) == 0 {
			return nil
		}
		lagBatch := make([]float64, len(batch))
		posBatch := make([]int32, len(batch))
		pool := flow.NewPool(ctx, job.Workers)
		for i, tr := range batch {
			pool.Go(func(ctx context.Context) error {
				posBatch[i] = -1
				if tr.Kill {
					return nil
				}
				at, ok := pilots.Find([]float64{float64(tr.CDP)})
				if !ok {
					return nil
				}
				dt := tr.DtSec()
				c := signal.CrossCorrelate(tr.Samples, pilotTraces[at],
					int(math.Round(p.WindowStart/dt)),
					int(math.Round(p.WindowLength/dt)),
					int(math.Round(p.MaxShift/dt)))
				posBatch[i] = int32(at)
				lagBatch[i] = float64(c.Lag)
				return nil
			})
		}
		if err := pool.Wait(); err != nil {
			return err
		}
		lags = append(lags, lagBatch...)
		pos = append(pos, posBatch...)
		for _, tr := range batch {
			srcIDs = append(srcIDs, tr.SourceID)
			rcvIDs = append(rcvIDs, tr.ReceiverID)
		}
		corr.Add(ctx, len(batch))
		batch = batch[:0]
		return nil
	}

	err = r.Each(func(tr *trace.Trace) error {
		if dtMS == 0 {
			dtMS = tr.DtMS()
		}
		batch = append(batch, tr)
		if len(batch) == batchSize {
			return correlate()
		}
		return nil
	})
	if err == nil {
		err = correlate()
	}
	closer.Close()
	if err != nil {
		return err
	}
	corr.Done(ctx)

	// The smoothed per-CDP lag profile is structure, not statics:
	// leave it in place so only the short wavelengths get corrected.
	structure := make([]float64, pilots.Len())
	if p.Smooth > 0 {
		sum := make([]float64, pilots.Len())
		cnt := make([]float64, pilots.Len())
		for i, at := range pos {
			if at >= 0 {
				sum[at] += lags[i]
				cnt[at]++
			}
		}
		means := make([]float64, pilots.Len())
		for i := range means {
			if cnt[i] > 0 {
				means[i] = sum[i] / cnt[i]
			}
		}
		structure = signal.Smooth(structure, means, p.Smooth)
	}

	// Surface-consistent decomposition: whatever lag is not structure
	// splits into a source term and a receiver term, the receiver
	// means taken after the source means come off.
	srcStat, err := gather.New[lagAcc](1, p.MaxStations)
	if err != nil {
		return err
	}
	rcvStat, err := gather.New[lagAcc](1, p.MaxStations)
	if err != nil {
		return err
	}
	for i := range lags {
		if pos[i] < 0 {
			continue
		}
		acc, err := srcStat.Get([]float64{float64(srcIDs[i])}, func() lagAcc { return lagAcc{} })
		if err != nil {
			return err
		}
		acc.sum += lags[i] - structure[pos[i]]
		acc.n++
	}
	for i := range lags {
		if pos[i] < 0 {
			continue
		}
		acc, err := rcvStat.Get([]float64{float64(rcvIDs[i])}, func() lagAcc { return lagAcc{} })
		if err != nil {
			return err
		}
		acc.sum += lags[i] - structure[pos[i]] - statAt(srcStat, srcIDs[i])
		acc.n++
	}
	log.InfoContext(ctx, "statics decomposed",
		"sources", srcStat.Len(), "receivers", rcvStat.Len())

	if staticsPath != "" {
		if err := writeStatics(ctx, staticsPath, job.S3, srcStat, rcvStat, dtMS); err != nil {
			return err
		}
	}

	codec := inCodec
	if codecName != "" {
		if codec, err = trace.ParseCompression(codecName); err != nil {
			return err
		}
	}

	// Pass 3: apply.
	r, closer, err = flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	defer closer.Close()
	w, err := flow.CreateSpool(ctx, output, job.S3, codec)
	if err != nil {
		return err
	}
	apply := flow.NewProgress(log.WithSpool(output), "apply", 0)
	err = r.Each(func(tr *trace.Trace) error {
		if !tr.Kill {
			applied := statAt(srcStat, tr.SourceID) + statAt(rcvStat, tr.ReceiverID)
			if applied != 0 {
				tr.Samples = signal.Shift(nil, tr.Samples, -applied)
				tr.Static += -applied * tr.DtMS()
			}
		}
		if err := w.Append(tr); err != nil {
			return err
		}
		apply.Add(ctx, 1)
		return nil
	})
	if err != nil {
		return err
	}
	apply.Done(ctx)
	return w.Close()
}

// statAt returns the station's mean lag, or 0 for a station that
// never contributed one.
func statAt(x *gather.Index[lagAcc], id int32) float64 {
	at, ok := x.Find([]float64{float64(id)})
	if !ok {
		return 0
	}
	return x.Payload(at).mean()
}

// writeStatics writes the decomposed shifts as CSV, in the applied
// sign: the milliseconds added to each trace's static header.
func writeStatics(ctx context.Context, location string, s3 archive.S3Config, src, rcv *gather.Index[lagAcc], dtMS float64) error {
	store, name, err := archive.Resolve(location, s3)
	if err != nil {
		return err
	}
	wc, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(wc)
	fmt.Fprintln(bw, "# component,station,shift_ms")
	write := func(component string, x *gather.Index[lagAcc]) {
		for i := 0; i < x.Len(); i++ {
			fmt.Fprintf(bw, "%s,%d,%.6g\n", component, int64(x.Key(i)[0]), -x.Payload(i).mean()*dtMS)
		}
	}
	write("source", src)
	write("receiver", rcv)
	if err := bw.Flush(); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}
