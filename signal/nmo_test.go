package signal

import (
	"math"
	"testing"
)

// Constant 2000 m/s and a 24 m offset put the moveout path on a 3-4-5
// triangle in samples: the event on sample 5 maps back to sample 4.
func TestNMO_HyperbolicImpulse(t *testing.T) {
	v, err := NewVelocity([]float64{0}, []float64{2000})
	if err != nil {
		t.Fatalf("NewVelocity: %v", err)
	}
	n, err := NewNMO(v, 0.5)
	if err != nil {
		t.Fatalf("NewNMO: %v", err)
	}

	src := make([]float32, 12)
	src[5] = 1
	dst := n.Correct(nil, src, 0.004, 24)

	if len(dst) != len(src) {
		t.Fatalf("len(dst) = %d, want %d", len(dst), len(src))
	}
	if got := float64(dst[4]); !almostEqual(got, 1, 1e-5) {
		t.Errorf("dst[4] = %v, want 1", got)
	}
	for _, i := range []int{6, 7, 8} {
		if got := float64(dst[i]); !almostEqual(got, 0, 1e-5) {
			t.Errorf("dst[%d] = %v, want 0", i, got)
		}
	}
}

func TestNMO_ZeroOffsetIsIdentity(t *testing.T) {
	v, err := NewVelocity([]float64{0, 1}, []float64{1500, 3000})
	if err != nil {
		t.Fatalf("NewVelocity: %v", err)
	}
	n, err := NewNMO(v, 0.5)
	if err != nil {
		t.Fatalf("NewNMO: %v", err)
	}

	src := []float32{0, 1, -2, 3, -4, 5, -6, 7}
	dst := n.Correct(nil, src, 0.004, 0)
	for i := range src {
		if got, want := float64(dst[i]), float64(src[i]); !almostEqual(got, want, 1e-5) {
			t.Errorf("dst[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestNMO_StretchMute(t *testing.T) {
	v, err := NewVelocity([]float64{0}, []float64{2000})
	if err != nil {
		t.Fatalf("NewVelocity: %v", err)
	}
	n, err := NewNMO(v, 0.5)
	if err != nil {
		t.Fatalf("NewNMO: %v", err)
	}

	src := make([]float32, 12)
	for i := range src {
		src[i] = 1
	}
	dst := n.Correct(nil, src, 0.004, 24)

	// The shallow samples stretch past 50% and mute; sample 3 is the
	// first survivor (stretch just over 0.41).
	for i := 0; i < 3; i++ {
		if dst[i] != 0 {
			t.Errorf("dst[%d] = %v, want muted 0", i, dst[i])
		}
	}
	if got := float64(dst[4]); !almostEqual(got, 1, 1e-5) {
		t.Errorf("dst[4] = %v, want 1", got)
	}
	// Moveout reads past the end of the input for the deepest sample.
	if dst[11] != 0 {
		t.Errorf("dst[11] = %v, want 0", dst[11])
	}
}

func TestNMO_ReusesDst(t *testing.T) {
	v, _ := NewVelocity([]float64{0}, []float64{2000})
	n, _ := NewNMO(v, 0.5)

	src := make([]float32, 64)
	buf := make([]float32, 64)
	dst := n.Correct(buf, src, 0.004, 100)
	if &dst[0] != &buf[0] {
		t.Error("Correct allocated although dst had capacity")
	}
}

func TestNewNMO_Validation(t *testing.T) {
	v, _ := NewVelocity([]float64{0}, []float64{2000})
	if _, err := NewNMO(nil, 0.5); err == nil {
		t.Error("nil velocity: expected error")
	}
	if _, err := NewNMO(v, 0); err == nil {
		t.Error("zero stretch: expected error")
	}
	if _, err := NewNMO(v, math.Inf(-1)); err == nil {
		t.Error("negative stretch: expected error")
	}
}
