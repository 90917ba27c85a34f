package object

import (
	"math"
	"strings"

	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/shopspring/decimal"
)

// limits of the fixed point currency type
var (
	CurrencyMax = decimal.RequireFromString("922337203685477.5807")
	CurrencyMin = decimal.RequireFromString("-922337203685477.5808")
)

// CheckCurrency rounds to four places, false if out of range
func CheckCurrency(d decimal.Decimal) (decimal.Decimal, bool) {
	d = d.RoundBank(4)
	if d.GreaterThan(CurrencyMax) || d.LessThan(CurrencyMin) {
		return d, false
	}
	return d, true
}

// ToFloat64 widens any numeric value
func ToFloat64(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return float64(v.Value), true
	case *IntDbl:
		return float64(v.Value), true
	case *FloatSgl:
		return float64(v.Value), true
	case *FloatDbl:
		return v.Value, true
	case *Currency:
		return v.Value.InexactFloat64(), true
	}
	return 0, false
}

// ToInt64 rounds any numeric value to the nearest integer, ties to even
// false for non numeric values or floats that don't fit
func ToInt64(obj Object) (int64, bool) {
	switch v := obj.(type) {
	case *Integer:
		return int64(v.Value), true
	case *IntDbl:
		return int64(v.Value), true
	case *Currency:
		return v.Value.RoundBank(0).IntPart(), true
	}
	f, ok := ToFloat64(obj)
	if !ok {
		return 0, false
	}
	f = math.RoundToEven(f)
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ToDecimal converts an integer or currency value to a decimal
func ToDecimal(obj Object) (decimal.Decimal, bool) {
	switch v := obj.(type) {
	case *Integer:
		return decimal.NewFromInt(int64(v.Value)), true
	case *IntDbl:
		return decimal.NewFromInt(int64(v.Value)), true
	case *Currency:
		return v.Value, true
	}
	return decimal.Zero, false
}

// Convert coerces a value to spec the way an assignment does.
// Failures come back as an *Error holding Overflow or Type mismatch.
func Convert(obj Object, spec gwtypes.Spec) Object {
	switch spec.Kind {
	case gwtypes.String:
		s, ok := obj.(*String)
		if !ok {
			return StdError(berrors.TypeMismatch)
		}
		if spec.Fixed > 0 {
			return &String{Value: fitString(s.Value, spec.Fixed)}
		}
		return s
	case gwtypes.Record:
		r, ok := obj.(*Record)
		if !ok || r.Def != spec.Record {
			return StdError(berrors.TypeMismatch)
		}
		return r.Clone()
	}

	if _, ok := ToFloat64(obj); !ok {
		return StdError(berrors.TypeMismatch)
	}

	switch spec.Kind {
	case gwtypes.Integer:
		if v, ok := obj.(*Integer); ok {
			return v
		}
		i, ok := ToInt64(obj)
		if !ok || i < math.MinInt16 || i > math.MaxInt16 {
			return StdError(berrors.Overflow)
		}
		return &Integer{Value: int16(i)}

	case gwtypes.Long:
		if v, ok := obj.(*IntDbl); ok {
			return v
		}
		i, ok := ToInt64(obj)
		if !ok || i < math.MinInt32 || i > math.MaxInt32 {
			return StdError(berrors.Overflow)
		}
		return &IntDbl{Value: int32(i)}

	case gwtypes.Single:
		if v, ok := obj.(*FloatSgl); ok {
			return v
		}
		f, _ := ToFloat64(obj)
		if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return StdError(berrors.Overflow)
		}
		return &FloatSgl{Value: float32(f)}

	case gwtypes.Double:
		if v, ok := obj.(*FloatDbl); ok {
			return v
		}
		f, _ := ToFloat64(obj)
		return &FloatDbl{Value: f}

	case gwtypes.Currency:
		var d decimal.Decimal
		switch v := obj.(type) {
		case *Currency:
			return v
		case *FloatSgl, *FloatDbl:
			f, _ := ToFloat64(obj)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return StdError(berrors.Overflow)
			}
			d = decimal.NewFromFloat(f)
		default:
			d, _ = ToDecimal(obj)
		}
		d, ok := CheckCurrency(d)
		if !ok {
			return StdError(berrors.Overflow)
		}
		return &Currency{Value: d}
	}

	panic("convert to unknown kind " + spec.String())
}

// fitString pads with spaces or truncates to a fixed length
func fitString(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}
