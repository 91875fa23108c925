// Package trace defines the seismic trace container and the spool format
// the utilities stream traces through.
//
// A Trace is a fixed header plus a float32 sample vector. Spools are
// length-framed binary streams of traces, optionally compressed per
// record (see Compression); Reader and Writer stream them one trace at a
// time so a job never holds a spool in memory. Selections over trace ids
// and header values are compressed bitmaps.
package trace

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrFormat reports a structurally invalid spool: bad magic, unknown
// version or codec, or a record that does not decode. All format errors
// wrap ErrFormat.
var ErrFormat = errors.New("malformed spool")

// Header identifies a trace and carries the acquisition geometry the
// utilities work from. Coordinates are survey meters; times are
// milliseconds unless named otherwise.
type Header struct {
	TraceID    int32 // sequential trace number within the spool
	FFID       int32 // field file id of the shot record
	SourceID   int32 // source station id, 0 until geometry is assigned
	ReceiverID int32 // receiver station id, 0 until geometry is assigned
	CDP        int32 // common depth point bin number, 0 until assigned
	Kill       bool  // trace is dead and excluded from processing

	Offset       float64 // signed source-receiver distance
	SourceX      float64
	SourceY      float64
	SourceElev   float64
	ReceiverX    float64
	ReceiverY    float64
	ReceiverElev float64
	Static       float64 // total static shift, ms
	Mute         float64 // top mute time, ms

	Dt int32 // sample interval, microseconds
}

// headerSize is the encoded size of a Header in a spool record.
const headerSize = 6*4 + 1 + 9*8

// MidX returns the source-receiver midpoint easting.
func (h *Header) MidX() float64 { return (h.SourceX + h.ReceiverX) / 2 }

// MidY returns the source-receiver midpoint northing.
func (h *Header) MidY() float64 { return (h.SourceY + h.ReceiverY) / 2 }

// OffsetAbs returns the unsigned offset.
func (h *Header) OffsetAbs() float64 { return math.Abs(h.Offset) }

// encode writes the header into buf, which must hold headerSize bytes.
func (h *Header) encode(buf []byte) {
	le := binary.LittleEndian
	le.PutUint32(buf[0:], uint32(h.TraceID))
	le.PutUint32(buf[4:], uint32(h.FFID))
	le.PutUint32(buf[8:], uint32(h.SourceID))
	le.PutUint32(buf[12:], uint32(h.ReceiverID))
	le.PutUint32(buf[16:], uint32(h.CDP))
	le.PutUint32(buf[20:], uint32(h.Dt))
	if h.Kill {
		buf[24] = 1
	} else {
		buf[24] = 0
	}
	le.PutUint64(buf[25:], math.Float64bits(h.Offset))
	le.PutUint64(buf[33:], math.Float64bits(h.SourceX))
	le.PutUint64(buf[41:], math.Float64bits(h.SourceY))
	le.PutUint64(buf[49:], math.Float64bits(h.SourceElev))
	le.PutUint64(buf[57:], math.Float64bits(h.ReceiverX))
	le.PutUint64(buf[65:], math.Float64bits(h.ReceiverY))
	le.PutUint64(buf[73:], math.Float64bits(h.ReceiverElev))
	le.PutUint64(buf[81:], math.Float64bits(h.Static))
	le.PutUint64(buf[89:], math.Float64bits(h.Mute))
}

// decode reads the header from buf, which must hold headerSize bytes.
func (h *Header) decode(buf []byte) {
	le := binary.LittleEndian
	h.TraceID = int32(le.Uint32(buf[0:]))
	h.FFID = int32(le.Uint32(buf[4:]))
	h.SourceID = int32(le.Uint32(buf[8:]))
	h.ReceiverID = int32(le.Uint32(buf[12:]))
	h.CDP = int32(le.Uint32(buf[16:]))
	h.Dt = int32(le.Uint32(buf[20:]))
	h.Kill = buf[24] != 0
	h.Offset = math.Float64frombits(le.Uint64(buf[25:]))
	h.SourceX = math.Float64frombits(le.Uint64(buf[33:]))
	h.SourceY = math.Float64frombits(le.Uint64(buf[41:]))
	h.SourceElev = math.Float64frombits(le.Uint64(buf[49:]))
	h.ReceiverX = math.Float64frombits(le.Uint64(buf[57:]))
	h.ReceiverY = math.Float64frombits(le.Uint64(buf[65:]))
	h.ReceiverElev = math.Float64frombits(le.Uint64(buf[73:]))
	h.Static = math.Float64frombits(le.Uint64(buf[81:]))
	h.Mute = math.Float64frombits(le.Uint64(buf[89:]))
}

// Trace is one seismic trace: a header and its samples.
type Trace struct {
	Header
	Samples []float32
}

// Ns returns the sample count.
func (t *Trace) Ns() int { return len(t.Samples) }

// DtSec returns the sample interval in seconds.
func (t *Trace) DtSec() float64 { return float64(t.Dt) * 1e-6 }

// DtMS returns the sample interval in milliseconds.
func (t *Trace) DtMS() float64 { return float64(t.Dt) * 1e-3 }

// Clone returns a deep copy.
func (t *Trace) Clone() *Trace {
	c := &Trace{Header: t.Header}
	c.Samples = append([]float32(nil), t.Samples...)
	return c
}
