package builtins

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/object"
	"github.com/shopspring/decimal"
)

// Builtins maps the intrinsic function names to their implementation
var Builtins = map[string]*object.Builtin{
	"ABS": { // absolute value
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			switch arg := args[0].(type) {
			case *object.Integer:
				if arg.Value == math.MinInt16 {
					return newError(berrors.Overflow)
				}
				if arg.Value < 0 {
					return &object.Integer{Value: -arg.Value}
				}
				return arg
			case *object.IntDbl:
				if arg.Value == math.MinInt32 {
					return newError(berrors.Overflow)
				}
				if arg.Value < 0 {
					return &object.IntDbl{Value: -arg.Value}
				}
				return arg
			case *object.Currency:
				return &object.Currency{Value: arg.Value.Abs()}
			case *object.FloatSgl:
				return &object.FloatSgl{Value: float32(math.Abs(float64(arg.Value)))}
			case *object.FloatDbl:
				return &object.FloatDbl{Value: math.Abs(arg.Value)}
			}
			return newError(berrors.TypeMismatch)
		},
	},
	"ASC": { // ASCII code for first char in string
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			arg, ok := args[0].(*object.String)
			if !ok {
				return newError(berrors.TypeMismatch)
			}
			if len(arg.Value) == 0 {
				return newError(berrors.IllegalFuncCallErr)
			}
			return &object.Integer{Value: int16(arg.Value[0])}
		},
	},
	"ATN": { // Arctangent of value
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return mathFunc(args, math.Atan)
		},
	},
	"CCUR": { // convert value to currency
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return convertTo(args, gwtypes.Currency)
		},
	},
	"CDBL": { // convert value to double precision
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return convertTo(args, gwtypes.Double)
		},
	},
	"CHR$": { // return character at codepoint args[0].Value
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			code, err := intArg(args[0])
			if err != nil {
				return err
			}
			if code < 0 || code > 255 {
				return newError(berrors.IllegalFuncCallErr)
			}
			return &object.String{Value: string([]byte{byte(code)})}
		},
	},
	"CINT": { // convert numeric to integer with rounding, as opposed to FIX()
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return convertTo(args, gwtypes.Integer)
		},
	},
	"CLNG": { // convert numeric to long with rounding
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return convertTo(args, gwtypes.Long)
		},
	},
	"COS": { // return the cosine of the arguement
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return mathFunc(args, math.Cos)
		},
	},
	"CSNG": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return convertTo(args, gwtypes.Single)
		},
	},
	"ERL": { // line number where the last error happened
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(berrors.Syntax)
			}
			return &object.IntDbl{Value: int32(env.Erl)}
		},
	},
	"ERR": { // number of the last error
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(berrors.Syntax)
			}
			return &object.Integer{Value: int16(env.Err)}
		},
	},
	"EXP": { // e^^x
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return mathFunc(args, math.Exp)
		},
	},
	"FIX": { // truncate a value, no rounding
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}
			return wholePart(args[0], math.Trunc, func(d decimal.Decimal) decimal.Decimal { return d.Truncate(0) })
		},
	},
	"FRE": { // free memory
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}
			free := freeMemory()
			if free > math.MaxInt32 {
				free = math.MaxInt32
			}
			return &object.IntDbl{Value: int32(free)}
		},
	},
	"HEX$": { // Convert value to hexidecimal
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return radix(args, 16)
		},
	},
	"INKEY$": { // next key waiting in the keyboard buffer, "" if none
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(berrors.Syntax)
			}
			if env.Terminal() == nil {
				return &object.String{}
			}
			return &object.String{Value: string(env.Terminal().ReadKeys(1))}
		},
	},
	"INSTR": { // search for a string inside of another string
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			start := 1
			if len(args) == 3 {
				st, err := intArg(args[0])
				if err != nil {
					return err
				}
				if st < 1 || st > math.MaxInt16 {
					return newError(berrors.IllegalFuncCallErr)
				}
				start = st
				args = args[1:]
			}
			if len(args) != 2 {
				return newError(berrors.Syntax)
			}

			hay, ok := args[0].(*object.String)
			needle, ok2 := args[1].(*object.String)
			if !ok || !ok2 {
				return newError(berrors.TypeMismatch)
			}
			if start > len(hay.Value) {
				return &object.Integer{Value: 0}
			}
			if len(needle.Value) == 0 {
				return &object.Integer{Value: int16(start)}
			}
			pos := strings.Index(hay.Value[start-1:], needle.Value)
			if pos < 0 {
				return &object.Integer{Value: 0}
			}
			return &object.Integer{Value: int16(pos + start)}
		},
	},
	"INT": { // largest whole number not greater than the argument
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}
			return wholePart(args[0], math.Floor, func(d decimal.Decimal) decimal.Decimal { return d.Floor() })
		},
	},
	"LBOUND": { // lower bound of an array dimension
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return bound(args, func(d object.Dim) int { return d.Lower })
		},
	},
	"LCASE$": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return stringFunc(args, strings.ToLower)
		},
	},
	"LEFT$": { // return the left most n characters of x$
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			s, n, err := stringAndLen(args)
			if err != nil {
				return err
			}
			if n > len(s) {
				n = len(s)
			}
			return &object.String{Value: s[:n]}
		},
	},
	"LEN": { // return the length of a string, or the storage size of a variable
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			switch arg := args[0].(type) {
			case *object.String:
				return &object.Integer{Value: int16(len(arg.Value))}
			case *object.Integer:
				return &object.Integer{Value: 2}
			case *object.IntDbl, *object.FloatSgl:
				return &object.Integer{Value: 4}
			case *object.FloatDbl, *object.Currency:
				return &object.Integer{Value: 8}
			}
			return newError(berrors.TypeMismatch)
		},
	},
	"LOG": { // return the natural log of a number
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) == 1 {
				if v, ok := object.ToFloat64(args[0]); ok && v <= 0 {
					return newError(berrors.IllegalFuncCallErr)
				}
			}
			return mathFunc(args, math.Log)
		},
	},
	"LTRIM$": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return stringFunc(args, func(s string) string { return strings.TrimLeft(s, " ") })
		},
	},
	"MID$": { // MID$(x$, start [, length])
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) < 2 || len(args) > 3 {
				return newError(berrors.Syntax)
			}

			s, ok := args[0].(*object.String)
			if !ok {
				return newError(berrors.TypeMismatch)
			}
			start, err := intArg(args[1])
			if err != nil {
				return err
			}
			if start < 1 || start > math.MaxInt16 {
				return newError(berrors.IllegalFuncCallErr)
			}
			n := len(s.Value)
			if len(args) == 3 {
				n, err = intArg(args[2])
				if err != nil {
					return err
				}
				if n < 0 || n > math.MaxInt16 {
					return newError(berrors.IllegalFuncCallErr)
				}
			}
			if start > len(s.Value) {
				return &object.String{}
			}
			end := start - 1 + n
			if end > len(s.Value) {
				end = len(s.Value)
			}
			return &object.String{Value: s.Value[start-1 : end]}
		},
	},
	"OCT$": { // convert a numeric to octal
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return radix(args, 8)
		},
	},
	"RIGHT$": { // return the rightmost n characters of the string
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			s, n, err := stringAndLen(args)
			if err != nil {
				return err
			}
			if n > len(s) {
				n = len(s)
			}
			return &object.String{Value: s[len(s)-n:]}
		},
	},
	"RND": { // generate a random number
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) == 0 {
				return env.Random(1)
			}
			if len(args) > 1 {
				return newError(berrors.Syntax)
			}

			v, ok := object.ToFloat64(args[0])
			if !ok {
				return newError(berrors.TypeMismatch)
			}
			switch {
			case v < 0:
				return env.Random(-int(math.Float32bits(float32(-v))) - 1)
			case v == 0:
				return env.Random(0)
			}
			return env.Random(1)
		},
	},
	"RTRIM$": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return stringFunc(args, func(s string) string { return strings.TrimRight(s, " ") })
		},
	},
	"SGN": { // return the sign of the argument -1 = neg, 0 = zero, 1 = pos
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			if c, ok := args[0].(*object.Currency); ok {
				return &object.Integer{Value: int16(c.Value.Sign())}
			}
			v, ok := object.ToFloat64(args[0])
			if !ok {
				return newError(berrors.TypeMismatch)
			}
			switch {
			case v < 0:
				return &object.Integer{Value: -1}
			case v > 0:
				return &object.Integer{Value: 1}
			}
			return &object.Integer{Value: 0}
		},
	},
	"SIN": { // calculate sine of arg in radians
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return mathFunc(args, math.Sin)
		},
	},
	"SPACE$": { // return number of spaces == round(arg[0])
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			n, err := intArg(args[0])
			if err != nil {
				return err
			}
			if n < 0 || n > math.MaxInt16 {
				return newError(berrors.IllegalFuncCallErr)
			}
			return &object.String{Value: strings.Repeat(" ", n)}
		},
	},
	"SQR": { // calculate square root of argument
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) == 1 {
				if v, ok := object.ToFloat64(args[0]); ok && v < 0 {
					return newError(berrors.IllegalFuncCallErr)
				}
			}
			return mathFunc(args, math.Sqrt)
		},
	},
	"STR$": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}
			if _, ok := object.ToFloat64(args[0]); !ok {
				return newError(berrors.TypeMismatch)
			}

			buf := object.AppendStr(env.Scratch(), args[0])
			env.KeepScratch(buf)
			return &object.String{Value: string(buf)}
		},
	},
	"STRING$": { // (x, y) build a string of length x consisting of character y repeated
		// if y is string, repeat the first character
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 2 {
				return newError(berrors.Syntax)
			}

			n, err := intArg(args[0])
			if err != nil {
				return err
			}
			if n < 0 || n > math.MaxInt16 {
				return newError(berrors.IllegalFuncCallErr)
			}

			var ch byte
			switch arg := args[1].(type) {
			case *object.String:
				if len(arg.Value) == 0 {
					return newError(berrors.IllegalFuncCallErr)
				}
				ch = arg.Value[0]
			default:
				code, err := intArg(arg)
				if err != nil {
					return err
				}
				if code < 0 || code > 255 {
					return newError(berrors.IllegalFuncCallErr)
				}
				ch = byte(code)
			}
			return &object.String{Value: strings.Repeat(string([]byte{ch}), n)}
		},
	},
	"TAN": { // compute the tangent of x in radians
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return mathFunc(args, math.Tan)
		},
	},
	"TIMER": { // seconds since midnight
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(berrors.Syntax)
			}
			now := env.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return &object.FloatSgl{Value: float32(now.Sub(midnight).Seconds())}
		},
	},
	"UBOUND": { // upper bound of an array dimension
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return bound(args, func(d object.Dim) int { return d.Upper })
		},
	},
	"UCASE$": {
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			return stringFunc(args, strings.ToUpper)
		},
	},
	"VAL": { // numeric value of the leading part of a string
		Fn: func(env *object.Environment, fn *object.Builtin, args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(berrors.Syntax)
			}

			arg, ok := args[0].(*object.String)
			if !ok {
				return newError(berrors.TypeMismatch)
			}
			return &object.FloatDbl{Value: ParseVal(arg.Value)}
		},
	},
}

// Lookup finds an intrinsic by name
func Lookup(name string) (*object.Builtin, bool) {
	fn, ok := Builtins[strings.ToUpper(name)]
	return fn, ok
}

// ParseVal reads the longest number at the start of s the way VAL does,
// blanks are ignored and &H / &O prefixes select hex and octal
func ParseVal(s string) float64 {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\t", "")

	if len(s) > 2 && s[0] == '&' {
		base := 0
		switch s[1] {
		case 'h', 'H':
			base = 16
		case 'o', 'O':
			base = 8
		}
		if base != 0 {
			end := 2
			for end < len(s) && digitOf(s[end]) < base {
				end++
			}
			v, err := strconv.ParseInt(s[2:end], base, 64)
			if err != nil {
				return 0
			}
			return float64(v)
		}
	}

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	mant := end
	if end < len(s) && strings.ContainsRune("eEdD", rune(s[end])) {
		e := end + 1
		if e < len(s) && (s[e] == '-' || s[e] == '+') {
			e++
		}
		start := e
		for e < len(s) && s[e] >= '0' && s[e] <= '9' {
			e++
		}
		if e > start {
			end = e
		}
	}

	num := s[:mant]
	if end > mant {
		num += "e" + s[mant+1:end]
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return v
}

// digitOf is the value of a hex digit, 99 for anything else
func digitOf(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 99
}

func newError(code int) *object.Error {
	return object.StdError(code)
}

// intArg rounds a numeric argument to an int
func intArg(obj object.Object) (int, *object.Error) {
	if _, ok := obj.(*object.String); ok {
		return 0, newError(berrors.TypeMismatch)
	}
	v, ok := object.ToInt64(obj)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, newError(berrors.Overflow)
	}
	return int(v), nil
}

// mathFunc applies fn, the result is double for a double argument, single otherwise
func mathFunc(args []object.Object, fn func(float64) float64) object.Object {
	if len(args) != 1 {
		return newError(berrors.Syntax)
	}

	v, ok := object.ToFloat64(args[0])
	if !ok {
		return newError(berrors.TypeMismatch)
	}
	res := fn(v)
	if math.IsInf(res, 0) || math.IsNaN(res) {
		return newError(berrors.Overflow)
	}
	if _, dbl := args[0].(*object.FloatDbl); dbl {
		return &object.FloatDbl{Value: res}
	}
	if math.Abs(res) > math.MaxFloat32 {
		return newError(berrors.Overflow)
	}
	return &object.FloatSgl{Value: float32(res)}
}

func convertTo(args []object.Object, kind gwtypes.Kind) object.Object {
	if len(args) != 1 {
		return newError(berrors.Syntax)
	}
	return object.Convert(args[0], gwtypes.Scalar(kind))
}

// wholePart drops the fraction keeping the argument's kind
func wholePart(arg object.Object, fn func(float64) float64, dfn func(decimal.Decimal) decimal.Decimal) object.Object {
	switch v := arg.(type) {
	case *object.Integer, *object.IntDbl:
		return v
	case *object.FloatSgl:
		return &object.FloatSgl{Value: float32(fn(float64(v.Value)))}
	case *object.FloatDbl:
		return &object.FloatDbl{Value: fn(v.Value)}
	case *object.Currency:
		return &object.Currency{Value: dfn(v.Value)}
	}
	return newError(berrors.TypeMismatch)
}

func stringFunc(args []object.Object, fn func(string) string) object.Object {
	if len(args) != 1 {
		return newError(berrors.Syntax)
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return newError(berrors.TypeMismatch)
	}
	return &object.String{Value: fn(s.Value)}
}

// stringAndLen validates the (x$, n) arguments of LEFT$ and RIGHT$
func stringAndLen(args []object.Object) (string, int, *object.Error) {
	if len(args) != 2 {
		return "", 0, newError(berrors.Syntax)
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return "", 0, newError(berrors.TypeMismatch)
	}
	n, err := intArg(args[1])
	if err != nil {
		return "", 0, err
	}
	if n < 0 || n > math.MaxInt16 {
		return "", 0, newError(berrors.IllegalFuncCallErr)
	}
	return s.Value, n, nil
}

// radix formats an integer argument, negative values are two's complement
func radix(args []object.Object, base int) object.Object {
	if len(args) != 1 {
		return newError(berrors.Syntax)
	}
	v, err := intArg(args[0])
	if err != nil {
		return err
	}

	var u uint64
	switch {
	case v >= 0:
		u = uint64(v)
	case v >= math.MinInt16:
		u = uint64(uint16(int16(v)))
	default:
		u = uint64(uint32(int32(v)))
	}
	return &object.String{Value: strings.ToUpper(strconv.FormatUint(u, base))}
}

// bound implements LBOUND and UBOUND, the dimension defaults to 1
func bound(args []object.Object, pick func(object.Dim) int) object.Object {
	if len(args) < 1 || len(args) > 2 {
		return newError(berrors.Syntax)
	}
	arr, ok := args[0].(*object.Array)
	if !ok {
		return newError(berrors.TypeMismatch)
	}
	dim := 1
	if len(args) == 2 {
		d, err := intArg(args[1])
		if err != nil {
			return err
		}
		dim = d
	}
	if dim < 1 || dim > len(arr.Dims) {
		return newError(berrors.SubscriptRange)
	}

	v := pick(arr.Dims[dim-1])
	if v < math.MinInt16 || v > math.MaxInt16 {
		return &object.IntDbl{Value: int32(v)}
	}
	return &object.Integer{Value: int16(v)}
}
