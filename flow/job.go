// Package flow is the plumbing the command line utilities share: job
// parameter files, structured logging, progress reporting and a
// bounded worker pool.
package flow

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/seiskit/seiskit/archive"
)

// Job is a utility parameter file: the shared blocks plus a section
// per utility. Each utility reads only the sections it cares about.
type Job struct {
	Workers int              `yaml:"workers,omitempty"`
	Log     string           `yaml:"log,omitempty"`
	S3      archive.S3Config `yaml:"s3,omitempty"`

	Geometry GeometryParams `yaml:"geometry,omitempty"`
	Stack    StackParams    `yaml:"stack,omitempty"`
	NMO      NMOParams      `yaml:"nmo,omitempty"`
	Statics  StaticsParams  `yaml:"statics,omitempty"`
	Datum    DatumParams    `yaml:"datum,omitempty"`
}

// GeometryParams drives CDP binning and station snapping.
type GeometryParams struct {
	Stations   string    `yaml:"stations,omitempty"`
	CDPOrigin  []float64 `yaml:"cdp_origin,omitempty"`
	CDPCell    float64   `yaml:"cdp_cell,omitempty"`
	SnapRadius float64   `yaml:"snap_radius,omitempty"`
	Growth     float64   `yaml:"growth,omitempty"`
	MaxCDPs    int       `yaml:"max_cdps,omitempty"`
}

// StackParams drives CDP stacking.
type StackParams struct {
	MaxCDPs   int  `yaml:"max_cdps,omitempty"`
	Normalize bool `yaml:"normalize,omitempty"`
}

// NMOParams holds the velocity picks and the stretch mute limit. A
// single flat function uses VelocityTimes/VelocityValues; laterally
// varying velocities list one function per control location and each
// trace takes the nearest one.
type NMOParams struct {
	VelocityTimes  []float64      `yaml:"velocity_times,omitempty"`
	VelocityValues []float64      `yaml:"velocity_values,omitempty"`
	Functions      []VelocityPick `yaml:"functions,omitempty"`
	Stretch        float64        `yaml:"stretch,omitempty"`
}

// VelocityPick is a velocity function picked at a surface location.
type VelocityPick struct {
	X      float64   `yaml:"x"`
	Y      float64   `yaml:"y"`
	Times  []float64 `yaml:"times"`
	Values []float64 `yaml:"values"`
}

// StaticsParams drives residual statics estimation. Times are in
// seconds.
type StaticsParams struct {
	WindowStart  float64 `yaml:"window_start,omitempty"`
	WindowLength float64 `yaml:"window_length,omitempty"`
	MaxShift     float64 `yaml:"max_shift,omitempty"`
	Smooth       int     `yaml:"smooth,omitempty"`
	MaxCDPs      int     `yaml:"max_cdps,omitempty"`
	MaxStations  int     `yaml:"max_stations,omitempty"`
}

// DatumParams drives datum statics. With a positive GridCell the
// datum floats on an elevation grid averaged from the stations within
// Radius of each node instead of the fixed elevation.
type DatumParams struct {
	Elevation           float64 `yaml:"elevation,omitempty"`
	ReplacementVelocity float64 `yaml:"replacement_velocity,omitempty"`
	GridCell            float64 `yaml:"grid_cell,omitempty"`
	Radius              float64 `yaml:"radius,omitempty"`
	Stations            string  `yaml:"stations,omitempty"`
}

const defaultMaxCDPs = 1 << 20

// Default returns the parameters a run without a job file gets.
func Default() *Job {
	job := &Job{}
	applyDefaults(job)
	return job
}

// Load reads a YAML job file and applies defaults. Unknown keys are
// rejected so a typo does not silently drop a parameter.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flow: read job file %s: %w", path, err)
	}

	var job Job
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty job file is a valid all-defaults run.
	if err := dec.Decode(&job); err != nil && err != io.EOF {
		return nil, fmt.Errorf("flow: parse job file %s: %w", path, err)
	}
	applyDefaults(&job)
	return &job, nil
}

func applyDefaults(job *Job) {
	if job.Workers <= 0 {
		job.Workers = runtime.GOMAXPROCS(0)
	}
	if job.Log == "" {
		job.Log = "info"
	}
	if job.Geometry.Growth == 0 {
		job.Geometry.Growth = 2
	}
	if job.Geometry.MaxCDPs == 0 {
		job.Geometry.MaxCDPs = defaultMaxCDPs
	}
	if job.Stack.MaxCDPs == 0 {
		job.Stack.MaxCDPs = defaultMaxCDPs
	}
	if job.Statics.MaxCDPs == 0 {
		job.Statics.MaxCDPs = defaultMaxCDPs
	}
	if job.Statics.MaxStations == 0 {
		job.Statics.MaxStations = defaultMaxCDPs
	}
	if job.NMO.Stretch == 0 {
		job.NMO.Stretch = 0.5
	}
	if job.Datum.Radius == 0 {
		job.Datum.Radius = 1.5 * job.Datum.GridCell
	}
}

// LogLevel maps the job's log name to a slog level.
func (j *Job) LogLevel() (slog.Level, error) {
	switch j.Log {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("flow: unknown log level %q", j.Log)
}
