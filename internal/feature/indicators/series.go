// Package indicators computes technical indicators over ordered bar series.
//
// Every function returns a slice with the same length as its input. Positions
// without enough history hold NaN, the package's "unavailable" sentinel; use
// Available to test a value. Functions never panic on short input.
package indicators

import "math"

// Unavailable returns the sentinel used for positions without enough history.
func Unavailable() float64 { return math.NaN() }

// Available reports whether v holds a computed value.
func Available(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AllAvailable reports whether every value is available.
func AllAvailable(vs ...float64) bool {
	for _, v := range vs {
		if !Available(v) {
			return false
		}
	}
	return true
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// At returns s[i], or NaN when i is out of range.
func At(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return math.NaN()
	}
	return s[i]
}

// Last returns the last value of s, or NaN for an empty slice.
func Last(s []float64) float64 {
	return At(s, len(s)-1)
}

// Sub returns a[i]-b[i] for every position.
func Sub(a, b []float64) []float64 {
	out := nans(len(a))
	for i := range a {
		if i < len(b) {
			out[i] = a[i] - b[i]
		}
	}
	return out
}

// Tristate is a boolean that may be unknown because its inputs are unavailable.
type Tristate int8

const (
	Unknown Tristate = iota
	No
	Yes
)

// True reports whether t is known and true.
func (t Tristate) True() bool { return t == Yes }

// False reports whether t is known and false.
func (t Tristate) False() bool { return t == No }

func tristate(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// Scale returns k·s[i] for every position.
func Scale(s []float64, k float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v * k
	}
	return out
}

// TristateOf returns Yes or No for b.
func TristateOf(b bool) Tristate { return tristate(b) }
