package indicators

// SqueezeLevel grades how tightly the Bollinger bands sit inside the Keltner
// channels on a bar.
type SqueezeLevel string

const (
	SqueezeUnavailable SqueezeLevel = ""
	SqueezeNone        SqueezeLevel = "none"
	SqueezeLow         SqueezeLevel = "low"
	SqueezeMid         SqueezeLevel = "mid"
	SqueezeHigh        SqueezeLevel = "high"
)

// Valid reports whether l is one of the known levels.
func (l SqueezeLevel) Valid() bool {
	switch l {
	case SqueezeUnavailable, SqueezeNone, SqueezeLow, SqueezeMid, SqueezeHigh:
		return true
	}
	return false
}

// inside: either Bollinger edge has moved inside its Keltner counterpart.
func inside(bbLower, bbUpper, kcLower, kcUpper float64) bool {
	return bbLower >= kcLower || bbUpper <= kcUpper
}

// ClassifySqueeze returns the squeeze level per bar. The tightest channel wins:
// high (1.0) is checked before mid (1.5) and low (2.0).
func ClassifySqueeze(bb Bands, kc KeltnerSet) []SqueezeLevel {
	out := make([]SqueezeLevel, len(bb.Basis))
	for i := range out {
		out[i] = classifyAt(bb, kc, i)
	}
	return out
}

func classifyAt(bb Bands, kc KeltnerSet, i int) SqueezeLevel {
	bl, bu := At(bb.Lower, i), At(bb.Upper, i)
	if !AllAvailable(bl, bu,
		At(kc.High.Lower, i), At(kc.High.Upper, i),
		At(kc.Mid.Lower, i), At(kc.Mid.Upper, i),
		At(kc.Low.Lower, i), At(kc.Low.Upper, i)) {
		return SqueezeUnavailable
	}
	switch {
	case inside(bl, bu, kc.High.Lower[i], kc.High.Upper[i]):
		return SqueezeHigh
	case inside(bl, bu, kc.Mid.Lower[i], kc.Mid.Upper[i]):
		return SqueezeMid
	case inside(bl, bu, kc.Low.Lower[i], kc.Low.Upper[i]):
		return SqueezeLow
	default:
		return SqueezeNone
	}
}

// NoSqueeze reports, per bar, whether the Bollinger bands have broken out of
// the widest (2.0) Keltner channel.
func NoSqueeze(bb Bands, low Bands) []Tristate {
	out := make([]Tristate, len(bb.Basis))
	for i := range out {
		bl, bu := At(bb.Lower, i), At(bb.Upper, i)
		kl, ku := At(low.Lower, i), At(low.Upper, i)
		if !AllAvailable(bl, bu, kl, ku) {
			continue
		}
		out[i] = tristate(bl < kl || bu > ku)
	}
	return out
}
