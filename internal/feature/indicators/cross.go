package indicators

// CrossAbove reports a strict upward cross of a over b at i:
// a[i] > b[i] and a[i-1] <= b[i-1].
func CrossAbove(a, b []float64, i int) bool {
	if i < 1 {
		return false
	}
	ca, cb, pa, pb := At(a, i), At(b, i), At(a, i-1), At(b, i-1)
	if !AllAvailable(ca, cb, pa, pb) {
		return false
	}
	return ca > cb && pa <= pb
}

// CrossBelow reports a strict downward cross of a under b at i.
func CrossBelow(a, b []float64, i int) bool {
	if i < 1 {
		return false
	}
	ca, cb, pa, pb := At(a, i), At(b, i), At(a, i-1), At(b, i-1)
	if !AllAvailable(ca, cb, pa, pb) {
		return false
	}
	return ca < cb && pa >= pb
}

// Above reports a[i] > b[i] with both values available.
func Above(a, b []float64, i int) bool {
	ca, cb := At(a, i), At(b, i)
	return AllAvailable(ca, cb) && ca > cb
}

// Below reports a[i] < b[i] with both values available.
func Below(a, b []float64, i int) bool {
	ca, cb := At(a, i), At(b, i)
	return AllAvailable(ca, cb) && ca < cb
}
