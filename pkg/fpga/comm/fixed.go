package comm

import "math"

// I1F7 is a signed Q1.7 fixed-point number: 1 integer bit (the sign) and
// 7 fraction bits, covering [-1, 1) in steps of 1/128.
type I1F7 int8

// I16F16 is a signed Q16.16 fixed-point number.
type I16F16 int32

const (
	i1f7Scale   = 1 << 7
	i16f16Scale = 1 << 16
)

// I1F7FromFloat converts f rounding to nearest (ties to even) and
// saturating at the representable range.
func I1F7FromFloat(f float64) I1F7 {
	return I1F7(saturate(f*i1f7Scale, math.MinInt8, math.MaxInt8))
}

// Float returns the value as float64.
func (v I1F7) Float() float64 {
	return float64(v) / i1f7Scale
}

// I16F16FromFloat converts f rounding to nearest (ties to even) and
// saturating at the representable range.
func I16F16FromFloat(f float64) I16F16 {
	return I16F16(saturate(f*i16f16Scale, math.MinInt32, math.MaxInt32))
}

// Float returns the value as float64.
func (v I16F16) Float() float64 {
	return float64(v) / i16f16Scale
}

func saturate(f, min, max float64) int64 {
	switch r := math.RoundToEven(f); {
	case math.IsNaN(r):
		return 0
	case r < min:
		return int64(min)
	case r > max:
		return int64(max)
	default:
		return int64(r)
	}
}
