package signal

import (
	"math"
	"testing"
)

const floatTol = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestVelocity_At(t *testing.T) {
	v, err := NewVelocity([]float64{0, 1, 2}, []float64{1500, 2500, 3000})
	if err != nil {
		t.Fatalf("NewVelocity: %v", err)
	}

	cases := []struct {
		t, want float64
	}{
		{0, 1500},
		{1, 2500},
		{0.5, 2000},
		{1.5, 2750},
		{-10, 1500}, // clamped below
		{10, 3000},  // clamped above
	}
	for _, c := range cases {
		if got := v.At(c.t); !almostEqual(got, c.want, floatTol) {
			t.Errorf("At(%v) = %v, want %v", c.t, got, c.want)
		}
	}
}

func TestVelocity_SinglePick(t *testing.T) {
	v, err := NewVelocity([]float64{0.5}, []float64{1800})
	if err != nil {
		t.Fatalf("NewVelocity: %v", err)
	}
	for _, tt := range []float64{0, 0.5, 3} {
		if got := v.At(tt); got != 1800 {
			t.Errorf("At(%v) = %v, want 1800", tt, got)
		}
	}
}

func TestNewVelocity_Validation(t *testing.T) {
	cases := []struct {
		name        string
		times, vels []float64
	}{
		{"empty", nil, nil},
		{"mismatched", []float64{0, 1}, []float64{1500}},
		{"zero velocity", []float64{0, 1}, []float64{1500, 0}},
		{"negative velocity", []float64{0}, []float64{-100}},
		{"times not increasing", []float64{0, 1, 1}, []float64{1500, 2000, 2500}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewVelocity(c.times, c.vels); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
