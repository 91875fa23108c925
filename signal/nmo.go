package signal

import (
	"fmt"
	"math"
)

// NMO applies normal moveout: it maps each zero-offset time t0 to the
// hyperbolic arrival time sqrt(t0^2 + (x/v(t0))^2) and resamples the
// input there. Samples stretched past the mute ratio are zeroed.
type NMO struct {
	vel     *Velocity
	stretch float64
}

// NewNMO returns a corrector using the given velocity function.
// maxStretch is the largest tolerated (t - t0)/t0 before a sample is
// muted; 0.5 is the usual field choice.
func NewNMO(vel *Velocity, maxStretch float64) (*NMO, error) {
	if vel == nil {
		return nil, fmt.Errorf("signal: nmo needs a velocity function")
	}
	if maxStretch <= 0 {
		return nil, fmt.Errorf("signal: nmo stretch limit is %v, want > 0", maxStretch)
	}
	return &NMO{vel: vel, stretch: maxStretch}, nil
}

// Correct writes the moveout-corrected version of src into dst and
// returns it. dt is the sample interval in seconds, offset the
// absolute source-receiver distance. dst is reused when it has the
// capacity; src and dst must not alias.
func (n *NMO) Correct(dst, src []float32, dt, offset float64) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i := range dst {
		t0 := float64(i) * dt
		v := n.vel.At(t0)
		// Moveout in sample units keeps the zero-offset path exact.
		off := offset / (v * dt)
		pos := math.Sqrt(float64(i)*float64(i) + off*off)
		if i == 0 {
			if pos > 0 {
				dst[i] = 0
			} else {
				dst[i] = sampleAt(src, 0)
			}
			continue
		}
		if (pos-float64(i))/float64(i) > n.stretch {
			dst[i] = 0
			continue
		}
		dst[i] = sampleAt(src, pos)
	}
	return dst
}

// sampleAt linearly interpolates s at fractional sample index pos.
// Positions outside the trace read as zero.
func sampleAt(s []float32, pos float64) float32 {
	if pos < 0 || len(s) == 0 {
		return 0
	}
	i := int(pos)
	if i >= len(s)-1 {
		if i == len(s)-1 && pos == float64(i) {
			return s[i]
		}
		return 0
	}
	f := float32(pos - float64(i))
	return s[i] + f*(s[i+1]-s[i])
}
