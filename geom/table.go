// Package geom loads survey geometry: station tables keyed by point id
// and gridded surfaces interpolated over the survey area.
package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seiskit/seiskit/spatial"
)

// ErrTable reports a malformed station table.
var ErrTable = errors.New("malformed station table")

// Station is one surveyed point: a source or receiver position with
// its elevation and any precomputed static shift in milliseconds.
type Station struct {
	ID        int32
	X, Y      float64
	Elevation float64
	Static    float64
}

// Table holds the stations of one survey in load order. It implements
// spatial.Source over (x, y), so trees build directly on a table.
type Table struct {
	stations []Station
	byID     map[int32]int
}

var _ spatial.Source = (*Table)(nil)

// ReadTable parses CSV station records id,x,y,elevation,static from r.
// A non-numeric first line is skipped as a header, '#' starts a
// comment line, and duplicate ids are rejected.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	t := &Table{byID: make(map[int32]int)}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("geom: read station table: %w", err)
		}
		line++
		if len(rec) != 5 {
			return nil, fmt.Errorf("geom: record %d has %d fields, want 5: %w", line, len(rec), ErrTable)
		}
		st, err := parseStation(rec)
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("geom: record %d: %w", line, err)
		}
		if _, dup := t.byID[st.ID]; dup {
			return nil, fmt.Errorf("geom: duplicate station id %d: %w", st.ID, ErrTable)
		}
		t.byID[st.ID] = len(t.stations)
		t.stations = append(t.stations, st)
	}
	return t, nil
}

// OpenTable reads a station table from a CSV file.
func OpenTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geom: open station table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

func parseStation(rec []string) (Station, error) {
	var st Station
	id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 32)
	if err != nil {
		return st, fmt.Errorf("station id %q: %w", rec[0], ErrTable)
	}
	st.ID = int32(id)
	for i, dst := range []*float64{&st.X, &st.Y, &st.Elevation, &st.Static} {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return st, fmt.Errorf("station %d field %q: %w", st.ID, rec[i+1], ErrTable)
		}
		*dst = v
	}
	return st, nil
}

// Len returns the number of stations.
func (t *Table) Len() int { return len(t.stations) }

// Dims returns 2: tables index on plan-view position.
func (t *Table) Dims() int { return 2 }

// Coord returns station elem's x (dim 0) or y (dim 1).
func (t *Table) Coord(elem, dim int) float64 {
	if dim == 0 {
		return t.stations[elem].X
	}
	return t.stations[elem].Y
}

// Station returns the station at index i in load order.
func (t *Table) Station(i int) Station { return t.stations[i] }

// ByID returns the station with the given id.
func (t *Table) ByID(id int32) (Station, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Station{}, false
	}
	return t.stations[i], true
}
