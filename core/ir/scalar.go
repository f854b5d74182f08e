package ir

import "math"

// numTolerance is the relative tolerance for comparing numeric literals, so
// integer and float spellings of the same quantity compare equal.
const numTolerance = 1e-9

// AsFloat converts a numeric scalar value to float64. It returns false for
// non-numeric values.
func AsFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// ScalarEqual compares two scalar values. Numbers compare with a relative
// tolerance; bools, strings and nil require exact equality. A number never
// equals a non-number.
func ScalarEqual(a, b interface{}) bool {
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if aok && bok {
		return floatClose(af, bf)
	}
	if aok != bok {
		return false
	}
	return a == b
}

func floatClose(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	return diff <= numTolerance*math.Max(math.Abs(a), math.Abs(b))
}
