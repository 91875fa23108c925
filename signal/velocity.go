// Package signal holds the sample math the utilities share: velocity
// functions, normal moveout, static shifts and cross-correlation.
package signal

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Velocity is a time-velocity function: piecewise linear between the
// picked knots, constant beyond them. A single knot gives a constant
// velocity.
type Velocity struct {
	pl       interp.PiecewiseLinear
	constant float64
	knots    int
}

// NewVelocity builds a velocity function from picks at strictly
// increasing times. Velocities must be positive.
func NewVelocity(times, vels []float64) (*Velocity, error) {
	if len(times) == 0 || len(times) != len(vels) {
		return nil, fmt.Errorf("signal: velocity picks need matching times and values, got %d and %d", len(times), len(vels))
	}
	for i, v := range vels {
		if v <= 0 {
			return nil, fmt.Errorf("signal: velocity pick %d is %v, want > 0", i, v)
		}
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("signal: velocity pick times must increase, got %v after %v", times[i], times[i-1])
		}
	}
	vf := &Velocity{knots: len(times)}
	if len(times) == 1 {
		vf.constant = vels[0]
		return vf, nil
	}
	if err := vf.pl.Fit(times, vels); err != nil {
		return nil, fmt.Errorf("signal: fit velocity function: %w", err)
	}
	return vf, nil
}

// At returns the velocity at time t in the units the picks were given
// in. Times outside the picked range clamp to the end knots.
func (v *Velocity) At(t float64) float64 {
	if v.knots == 1 {
		return v.constant
	}
	return v.pl.Predict(t)
}
