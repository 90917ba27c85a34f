package object

import (
	"strconv"
)

// significant digits shown for each float kind
const (
	singleDigits = 7
	doubleDigits = 16
)

// AppendNumber appends the display image of a number to dst.
// No leading blank is added, negative values start with '-'.
// Non numeric values are appended with Inspect.
func AppendNumber(dst []byte, obj Object) []byte {
	switch v := obj.(type) {
	case *Integer:
		return strconv.AppendInt(dst, int64(v.Value), 10)
	case *IntDbl:
		return strconv.AppendInt(dst, int64(v.Value), 10)
	case *FloatSgl:
		return appendFloat(dst, float64(v.Value), singleDigits, 32, 'E')
	case *FloatDbl:
		return appendFloat(dst, v.Value, doubleDigits, 64, 'D')
	case *Currency:
		s := v.Value.String()
		if neg := len(s) > 0 && s[0] == '-'; neg {
			dst = append(dst, '-')
			s = s[1:]
		}
		if len(s) > 2 && s[0] == '0' && s[1] == '.' {
			s = s[1:]
		}
		return append(dst, s...)
	}
	return append(dst, obj.Inspect()...)
}

// AppendPrint appends what PRINT shows for a value.
// Numbers get a leading blank (or the minus sign) and a trailing blank.
func AppendPrint(dst []byte, obj Object) []byte {
	if s, ok := obj.(*String); ok {
		return append(dst, s.Value...)
	}
	dst = AppendStr(dst, obj)
	return append(dst, ' ')
}

// AppendStr appends the STR$ image of a number, a sign position then digits
func AppendStr(dst []byte, obj Object) []byte {
	start := len(dst)
	dst = AppendNumber(dst, obj)
	if len(dst) > start && dst[start] == '-' {
		return dst
	}
	dst = append(dst, 0)
	copy(dst[start+1:], dst[start:len(dst)-1])
	dst[start] = ' '
	return dst
}

// appendFloat rounds f to digits significant digits and picks fixed
// or exponent notation the way PRINT does
func appendFloat(dst []byte, f float64, digits, bits int, expChar byte) []byte {
	if f == 0 {
		return append(dst, '0')
	}
	if f < 0 {
		dst = append(dst, '-')
		f = -f
	}

	// d.ddddde+XX
	var scratch [32]byte
	img := strconv.AppendFloat(scratch[:0], f, 'e', digits-1, bits)
	epos := 0
	for i, c := range img {
		if c == 'e' {
			epos = i
			break
		}
	}
	if epos == 0 {
		// Inf and NaN have no exponent
		return append(dst, img...)
	}
	exp, _ := strconv.Atoi(string(img[epos+1:]))

	mant := make([]byte, 0, digits)
	mant = append(mant, img[0])
	if epos > 1 {
		mant = append(mant, img[2:epos]...)
	}
	for len(mant) > 1 && mant[len(mant)-1] == '0' {
		mant = mant[:len(mant)-1]
	}

	switch {
	case exp >= 0 && exp < digits:
		// integer part then any fraction
		if len(mant) <= exp+1 {
			dst = append(dst, mant...)
			for i := len(mant); i <= exp; i++ {
				dst = append(dst, '0')
			}
			return dst
		}
		dst = append(dst, mant[:exp+1]...)
		dst = append(dst, '.')
		return append(dst, mant[exp+1:]...)

	case exp < 0 && -exp-1+len(mant) <= digits:
		dst = append(dst, '.')
		for i := -1; i > exp; i-- {
			dst = append(dst, '0')
		}
		return append(dst, mant...)
	}

	dst = append(dst, mant[0])
	if len(mant) > 1 {
		dst = append(dst, '.')
		dst = append(dst, mant[1:]...)
	}
	dst = append(dst, expChar)
	if exp < 0 {
		dst = append(dst, '-')
		exp = -exp
	} else {
		dst = append(dst, '+')
	}
	if exp < 10 {
		dst = append(dst, '0')
	}
	return strconv.AppendInt(dst, int64(exp), 10)
}
