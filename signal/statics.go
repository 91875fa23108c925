package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Correlation is the outcome of a lag scan: the lag in samples at
// which the normalized cross-correlation peaks, and the coefficient
// there. Positive lag means the trace arrives later than the
// reference.
type Correlation struct {
	Lag  int
	Coef float64
}

// CrossCorrelate scans lags in [-maxLag, maxLag] for the shift that
// best aligns trace with ref over the window starting at sample start
// with the given length. Samples outside either slice read as zero.
// A dead reference window returns the zero Correlation.
func CrossCorrelate(trace, ref []float32, start, length, maxLag int) Correlation {
	if length <= 0 || maxLag < 0 {
		return Correlation{}
	}
	refWin := make([]float64, length)
	fillWindow(refWin, ref, start)
	refNorm := floats.Norm(refWin, 2)
	if refNorm == 0 {
		return Correlation{}
	}

	win := make([]float64, length)
	best := Correlation{Coef: math.Inf(-1)}
	for lag := -maxLag; lag <= maxLag; lag++ {
		fillWindow(win, trace, start+lag)
		den := refNorm * floats.Norm(win, 2)
		var c float64
		if den > 0 {
			c = floats.Dot(refWin, win) / den
		}
		if c > best.Coef {
			best = Correlation{Lag: lag, Coef: c}
		}
	}
	return best
}

// fillWindow copies src[from:from+len(dst)] into dst, widening to
// float64 and zero-filling past either end.
func fillWindow(dst []float64, src []float32, from int) {
	for i := range dst {
		j := from + i
		if j < 0 || j >= len(src) {
			dst[i] = 0
			continue
		}
		dst[i] = float64(src[j])
	}
}

// Shift writes src delayed by lag samples into dst and returns it.
// Fractional lags interpolate linearly; samples shifted in from
// outside the trace are zero. dst is reused when it has the capacity;
// src and dst must not alias.
func Shift(dst, src []float32, lag float64) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i := range dst {
		dst[i] = sampleAt(src, float64(i)-lag)
	}
	return dst
}
