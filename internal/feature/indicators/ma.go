package indicators

import "math"

// EMA is an exponential moving average with alpha = 2/(span+1), computed
// recursively (adjust=false) and seeded with the first available value.
// Unavailable inputs after the seed carry the previous average forward.
func EMA(src []float64, span int) []float64 {
	out := nans(len(src))
	if span < 1 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	seeded := false
	prev := 0.0
	for i, v := range src {
		if !Available(v) {
			if seeded {
				out[i] = prev
			}
			continue
		}
		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// SMA is the rolling mean over n values. A window that contains an
// unavailable value is unavailable.
func SMA(src []float64, n int) []float64 {
	out := nans(len(src))
	if n < 1 {
		return out
	}
	sum := 0.0
	missing := 0
	for i, v := range src {
		if Available(v) {
			sum += v
		} else {
			missing++
		}
		if i >= n {
			old := src[i-n]
			if Available(old) {
				sum -= old
			} else {
				missing--
			}
		}
		if i >= n-1 && missing == 0 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RollingStd is the rolling standard deviation over n values with the given
// delta degrees of freedom (0 for population, 1 for sample).
func RollingStd(src []float64, n, ddof int) []float64 {
	out := nans(len(src))
	if n < 1 || n-ddof <= 0 {
		return out
	}
	mean := SMA(src, n)
	for i := n - 1; i < len(src); i++ {
		if !Available(mean[i]) {
			continue
		}
		ss := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := src[j] - mean[i]
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(n-ddof))
	}
	return out
}

// RollingMax is the highest value over the last n values.
func RollingMax(src []float64, n int) []float64 {
	return rollingExtreme(src, n, func(a, b float64) bool { return a > b })
}

// RollingMin is the lowest value over the last n values.
func RollingMin(src []float64, n int) []float64 {
	return rollingExtreme(src, n, func(a, b float64) bool { return a < b })
}

func rollingExtreme(src []float64, n int, better func(a, b float64) bool) []float64 {
	out := nans(len(src))
	if n < 1 {
		return out
	}
	for i := n - 1; i < len(src); i++ {
		best := src[i-n+1]
		ok := Available(best)
		for j := i - n + 2; ok && j <= i; j++ {
			if !Available(src[j]) {
				ok = false
				break
			}
			if better(src[j], best) {
				best = src[j]
			}
		}
		if ok {
			out[i] = best
		}
	}
	return out
}
