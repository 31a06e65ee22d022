package rules

import "imagedetective/types"

// Ratio returns min(a,b)/max(a,b) when both values are known and positive,
// and 0 otherwise. It is symmetric, lies in [0,1] and is 1 only for equal
// values.
func Ratio(a, b types.Optional[int64]) float64 {
	if !a.Valid || !b.Valid || a.Value <= 0 || b.Value <= 0 {
		return 0
	}
	lo, hi := a.Value, b.Value
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo) / float64(hi)
}

// RatioInt is Ratio for pixel dimensions
func RatioInt(a, b types.Optional[int]) float64 {
	return Ratio(widen(a), widen(b))
}

func widen(v types.Optional[int]) types.Optional[int64] {
	if !v.Valid {
		return types.Unknown[int64]()
	}
	return types.Known(int64(v.Value))
}
