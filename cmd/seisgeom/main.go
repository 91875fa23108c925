// seisgeom assigns acquisition geometry to a raw spool. Trace
// midpoints are binned on a regular CDP grid and the occupied bins
// are numbered in sorted key order, so CDP numbers are stable across
// reruns. With a station table, sources and receivers snap to their
// nearest surveyed station and pick up its elevation and field
// static.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/seiskit/seiskit/flow"
	"github.com/seiskit/seiskit/gather"
	"github.com/seiskit/seiskit/geom"
	"github.com/seiskit/seiskit/spatial"
	"github.com/seiskit/seiskit/trace"
)

func main() {
	var (
		jobPath   = flag.String("job", "", "YAML job parameter file")
		input     = flag.String("in", "", "input spool (path or s3://bucket/key)")
		output    = flag.String("out", "", "output spool")
		codecName = flag.String("codec", "", "output compression: none, lz4 or zstd (default: input codec)")
		stations  = flag.String("stations", "", "station table CSV (overrides the job file)")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "seisgeom: -in and -out are required")
		flag.Usage()
		os.Exit(2)
	}

	job := flow.Default()
	if *jobPath != "" {
		var err error
		if job, err = flow.Load(*jobPath); err != nil {
			fmt.Fprintln(os.Stderr, "seisgeom:", err)
			os.Exit(1)
		}
	}
	if *stations != "" {
		job.Geometry.Stations = *stations
	}

	level, err := job.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "seisgeom:", err)
		os.Exit(1)
	}
	log := flow.NewTextLogger(level).WithUtility("seisgeom")

	if err := run(context.Background(), log, job, *input, *output, *codecName); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *flow.Logger, job *flow.Job, input, output, codecName string) error {
	p := job.Geometry
	if p.CDPCell <= 0 {
		return fmt.Errorf("geometry: cdp_cell must be positive, got %v", p.CDPCell)
	}
	var originX, originY float64
	switch len(p.CDPOrigin) {
	case 0:
	case 2:
		originX, originY = p.CDPOrigin[0], p.CDPOrigin[1]
	default:
		return fmt.Errorf("geometry: cdp_origin needs [x, y], got %d values", len(p.CDPOrigin))
	}

	var snap *snapper
	if p.Stations != "" {
		table, err := geom.OpenTable(p.Stations)
		if err != nil {
			return err
		}
		if snap, err = newSnapper(table, p); err != nil {
			return err
		}
		log.InfoContext(ctx, "station table loaded", "stations", table.Len())
	}

	// Pass 1: register every occupied midpoint bin.
	bins, err := gather.New[int32](2, p.MaxCDPs)
	if err != nil {
		return err
	}
	r, closer, err := flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	scan := flow.NewProgress(log.WithSpool(input), "scan", 0)
	key := make([]float64, 2)
	err = r.Each(func(tr *trace.Trace) error {
		key[0] = gather.Quantize(tr.MidX(), originX, p.CDPCell)
		key[1] = gather.Quantize(tr.MidY(), originY, p.CDPCell)
		if _, err := bins.Get(key, func() int32 { return 0 }); err != nil {
			return err
		}
		scan.Add(ctx, 1)
		return nil
	})
	closer.Close()
	if err != nil {
		return err
	}
	scan.Done(ctx)

	// Number the bins in sorted key order.
	for i := 0; i < bins.Len(); i++ {
		*bins.Payload(i) = int32(i + 1)
	}
	log.InfoContext(ctx, "cdp bins numbered", "bins", bins.Len())

	codec := r.Codec()
	if codecName != "" {
		if codec, err = trace.ParseCompression(codecName); err != nil {
			return err
		}
	}

	// Pass 2: rewrite headers.
	r, closer, err = flow.OpenSpool(ctx, input, job.S3)
	if err != nil {
		return err
	}
	defer closer.Close()
	w, err := flow.CreateSpool(ctx, output, job.S3, codec)
	if err != nil {
		return err
	}
	assign := flow.NewProgress(log.WithSpool(output), "assign", 0)
	err = r.Each(func(tr *trace.Trace) error {
		key[0] = gather.Quantize(tr.MidX(), originX, p.CDPCell)
		key[1] = gather.Quantize(tr.MidY(), originY, p.CDPCell)
		pos, ok := bins.Find(key)
		if !ok {
			return fmt.Errorf("geometry: no bin for trace %d midpoint", tr.TraceID)
		}
		tr.CDP = *bins.Payload(pos)
		if snap != nil {
			snap.apply(&tr.Header)
		}
		if tr.Offset == 0 {
			tr.Offset = math.Hypot(tr.ReceiverX-tr.SourceX, tr.ReceiverY-tr.SourceY)
		}
		if err := w.Append(tr); err != nil {
			return err
		}
		assign.Add(ctx, 1)
		return nil
	})
	if err != nil {
		return err
	}
	assign.Done(ctx)
	return w.Close()
}

// snapper matches shot and receiver positions to surveyed stations
// with expanding-radius searches. Carried radii keep consecutive
// traces on the same line cheap.
type snapper struct {
	table *geom.Table
	src   *spatial.Searcher
	rcv   *spatial.Searcher
}

func newSnapper(table *geom.Table, p flow.GeometryParams) (*snapper, error) {
	tree, err := spatial.NewTree(table, spatial.DispersedOrder)
	if err != nil {
		return nil, err
	}
	cfg := spatial.DefaultSearchConfig()
	cfg.Radius = p.SnapRadius
	if cfg.Radius <= 0 {
		cfg.Radius = p.CDPCell
	}
	cfg.Growth = p.Growth
	cfg.Carry = true

	src, err := spatial.NewSearcher(tree, cfg)
	if err != nil {
		return nil, err
	}
	rcv, err := spatial.NewSearcher(tree, cfg)
	if err != nil {
		return nil, err
	}
	return &snapper{table: table, src: src, rcv: rcv}, nil
}

func (s *snapper) apply(h *trace.Header) {
	h.Static = 0
	if st, ok := s.snap(s.src, h.SourceX, h.SourceY); ok {
		h.SourceID = st.ID
		h.SourceElev = st.Elevation
		h.Static += st.Static
	}
	if st, ok := s.snap(s.rcv, h.ReceiverX, h.ReceiverY); ok {
		h.ReceiverID = st.ID
		h.ReceiverElev = st.Elevation
		h.Static += st.Static
	}
}

func (s *snapper) snap(searcher *spatial.Searcher, x, y float64) (geom.Station, bool) {
	res := searcher.Find([]float64{x, y})
	if res.Count == 0 {
		return geom.Station{}, false
	}
	return s.table.Station(res.Elem), true
}
