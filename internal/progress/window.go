package progress

import (
	"math"
	"sort"
)

// window keeps the last size rate samples for quantile estimates.
type window struct {
	size   int
	values []float64
}

func newWindow(size int) *window {
	if size <= 0 {
		size = 1
	}
	return &window{size: size}
}

func (w *window) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if len(w.values) == w.size {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	w.values = append(w.values, v)
}

// Quantile interpolates linearly between the closest ranks.
func (w *window) Quantile(q float64) float64 {
	n := len(w.values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), w.values...)
	sort.Float64s(sorted)
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	weight := pos - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
