package utils

import "math"

// NormalizeL2 scales emb in place to unit length and returns the length it had.
// A zero vector is left as is and 0 is returned.
func NormalizeL2(emb []float32) float64 {
	var sq float64
	for _, v := range emb {
		sq += float64(v) * float64(v)
	}
	if sq == 0 {
		return 0
	}
	length := math.Sqrt(sq)
	inv := 1 / length
	for i, v := range emb {
		emb[i] = float32(float64(v) * inv)
	}
	return length
}
