package signal

import "gonum.org/v1/gonum/floats"

// Smooth writes the running mean of src into dst and returns it: each
// value becomes the average of the window of halfWidth neighbours on
// each side, shrunk at the ends. halfWidth 0 copies src. Statics
// profiles are smoothed this way before they are applied.
func Smooth(dst, src []float64, halfWidth int) []float64 {
	if cap(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]
	for i := range src {
		lo := i - halfWidth
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWidth + 1
		if hi > len(src) {
			hi = len(src)
		}
		dst[i] = floats.Sum(src[lo:hi]) / float64(hi-lo)
	}
	return dst
}
