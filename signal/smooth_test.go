package signal

import "testing"

func TestSmooth(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5}

	got := Smooth(nil, src, 1)
	want := []float64{1.5, 2, 3, 4, 4.5}
	for i := range want {
		if !almostEqual(got[i], want[i], floatTol) {
			t.Errorf("Smooth[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSmooth_ZeroWidthCopies(t *testing.T) {
	src := []float64{3, -1, 4, -1, 5}
	got := Smooth(nil, src, 0)
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("Smooth[%d] = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestSmooth_WideWindowIsMean(t *testing.T) {
	src := []float64{2, 4, 6, 8}
	got := Smooth(nil, src, 10)
	for i := range got {
		if !almostEqual(got[i], 5, floatTol) {
			t.Errorf("Smooth[%d] = %v, want 5", i, got[i])
		}
	}
}

func TestSmooth_ReusesDst(t *testing.T) {
	src := []float64{1, 2, 3}
	buf := make([]float64, 8)
	got := Smooth(buf, src, 1)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if &got[0] != &buf[0] {
		t.Error("Smooth allocated although dst had capacity")
	}
}
