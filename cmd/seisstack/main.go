// seisstack sums the traces of each CDP into one stacked trace. The
// input is expected to carry CDP numbers (seisgeom) and to be moveout
// corrected (seisnmo); the output holds one trace per CDP in CDP
// order. -select restricts the stack to traces matching a header
// value list, resolved through a bitmap index over the spool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/seiskit/seiskit/flow"
	"github.com/seiskit/seiskit/gather"
	"github.com/seiskit/seiskit/trace"
)

func main() {
	var (
		jobPath   = flag.String("job", "", "YAML job parameter file")
		input     = flag.String("in", "", "input spool (path or s3://bucket/key)")
		output    = flag.String("out", "", "output spool")
		codecName = flag.String("codec", "", "output compression: none, lz4 or zstd (default: input codec)")
		raw       = flag.Bool("raw", false, "write plain sums instead of fold-normalized amplitudes")
		selExpr   = flag.String("select", "", "stack only matching traces, e.g. ffid=1001,1002 (fields: ffid, cdp, source, receiver)")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "seisstack: -in and -out are required")
		flag.Usage()
		os.Exit(2)
	}

	job := flow.Default()
	if *jobPath != "" {
		var err error
		if job, err = flow.Load(*jobPath); err != nil {
			fmt.Fprintln(os.Stderr, "seisstack:", err)
			os.Exit(1)
		}
	} else {
		job.Stack.Normalize = true
	}
	if *raw {
		job.Stack.Normalize = false
	}

	level, err := job.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisstack:", err)
		os.Exit(1)
	}
	log := flow.NewTextLogger(level).WithUtility("seisstack")

	if err := run(context.Background(), log, job, *input, *output, *codecName, *selExpr); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// stackCell accumulates one CDP: float64 sums so a high-fold stack
// does not lose low bits, plus the header of the first live trace.
type stackCell struct {
	hdr  trace.Header
	sum  []float64
	fold int32
}

func run(ctx context.Context, log *flow.Logger, job *flow.Job, input, output, codecName, selExpr string) error {
	groups, err := gather.New[stackCell](1, job.Stack.MaxCDPs)
	if err != nil {
		return err
	}

	var sel *trace.Selection
	if selExpr != "" {
		if sel, err = selector(ctx, log, job, input, selExpr); err != nil {
			return err
		}
	}

	r, closer, err := flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	prog := flow.NewProgress(log.WithSpool(input), "stack", 0)
	key := make([]float64, 1)
	err = r.Each(func(tr *trace.Trace) error {
		if tr.Kill {
			return nil
		}
		if sel != nil && !sel.Contains(tr.TraceID) {
			return nil
		}
		key[0] = float64(tr.CDP)
		cell, err := groups.Get(key, func() stackCell {
			return stackCell{hdr: tr.Header}
		})
		if err != nil {
			return err
		}
		if tr.Dt != cell.hdr.Dt {
			return fmt.Errorf("stack: cdp %d mixes sample intervals %d and %d", tr.CDP, cell.hdr.Dt, tr.Dt)
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
		prog.Add(ctx, 1)
		return nil
	})
	closer.Close()
	if err != nil {
		return err
	}
	prog.Done(ctx)
	log.InfoContext(ctx, "stacking finished", "cdps", groups.Len(), "traces", prog.Count())

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
	for i := 0; i < groups.Len(); i++ {
		cell := groups.Payload(i)
		out := &trace.Trace{Header: cell.hdr, Samples: make([]float32, len(cell.sum))}
		out.TraceID = int32(i + 1)
		out.FFID = 0
		out.Offset = 0

		// A stacked trace sits at the bin midpoint.
		mx, my := cell.hdr.MidX(), cell.hdr.MidY()
		out.SourceX, out.SourceY = mx, my
		out.ReceiverX, out.ReceiverY = mx, my

		norm := 1.0
		if job.Stack.Normalize {
			norm = 1 / float64(cell.fold)
		}
		for j, v := range cell.sum {
			out.Samples[j] = float32(v * norm)
		}
		if err := w.Append(out); err != nil {
			return err
		}
	}
	return w.Close()
}

// selector resolves a field=v1,v2,... expression to a trace selection
// by indexing the header field in an extra pass over the spool.
func selector(ctx context.Context, log *flow.Logger, job *flow.Job, input, expr string) (*trace.Selection, error) {
	field, list, ok := strings.Cut(expr, "=")
	if !ok {
		return nil, fmt.Errorf("stack: bad selection %q, want field=v1,v2,...", expr)
	}
	value, err := headerValue(field)
	if err != nil {
		return nil, err
	}
	var values []int64
	for _, s := range strings.Split(list, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("stack: bad selection value %q: %w", s, err)
		}
		values = append(values, v)
	}

	fi := trace.NewFieldIndex()
	r, closer, err := flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	err = r.Each(func(tr *trace.Trace) error {
		fi.Add(value(&tr.Header), tr.TraceID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sel := fi.Select(values...)
	log.InfoContext(ctx, "selection built", "field", field, "traces", sel.Len())
	return sel, nil
}

func headerValue(field string) (func(*trace.Header) int64, error) {
	switch field {
	case "ffid":
		return func(h *trace.Header) int64 { return int64(h.FFID) }, nil
	case "cdp":
		return func(h *trace.Header) int64 { return int64(h.CDP) }, nil
	case "source":
		return func(h *trace.Header) int64 { return int64(h.SourceID) }, nil
	case "receiver":
		return func(h *trace.Header) int64 { return int64(h.ReceiverID) }, nil
	}
	return nil, fmt.Errorf("stack: unknown selection field %q", field)
}
