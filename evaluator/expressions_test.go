package evaluator

import (
	"math"
	"strings"
	"testing"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/mocks"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalEnv() *object.Environment {
	return object.NewEnvironment(ast.NewProgram(seq()), mocks.NewMockTerm())
}

func Test_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		exp  ast.Expression
		want object.Object
	}{
		{name: "int add", exp: infix(num(3), token.PLUS, num(4)), want: &object.Integer{Value: 7}},
		{name: "long add", exp: infix(num(3), token.PLUS, lng(4)), want: &object.IntDbl{Value: 7}},
		{name: "int divide", exp: infix(num(7), token.SLASH, num(2)), want: &object.FloatSgl{Value: 3.5}},
		{name: "long divide", exp: infix(lng(7), token.SLASH, num(2)), want: &object.FloatDbl{Value: 3.5}},
		{name: "single divide", exp: infix(sgl(1), token.SLASH, num(4)), want: &object.FloatSgl{Value: 0.25}},
		{name: "double times", exp: infix(dbl(1.5), token.ASTERISK, num(2)), want: &object.FloatDbl{Value: 3}},
		{name: "single rounds", exp: infix(sgl(0.1), token.PLUS, sgl(0.2)), want: &object.FloatSgl{Value: float32(0.1) + float32(0.2)}},
		{name: "int divide rounds operands", exp: infix(sgl(7.6), token.BSLASH, num(2)), want: &object.IntDbl{Value: 4}},
		{name: "int divide truncates", exp: infix(neg(num(7)), token.BSLASH, num(2)), want: &object.Integer{Value: -3}},
		{name: "mod sign follows dividend", exp: infix(neg(num(7)), token.MOD, num(3)), want: &object.Integer{Value: -1}},
		{name: "mod long", exp: infix(lng(100000), token.MOD, num(7)), want: &object.IntDbl{Value: 5}},
		{name: "power", exp: infix(num(2), token.CARET, num(10)), want: &object.FloatSgl{Value: 1024}},
		{name: "power double", exp: infix(dbl(2), token.CARET, num(-1)), want: &object.FloatDbl{Value: 0.5}},
		{name: "zero to the zero", exp: infix(num(0), token.CARET, num(0)), want: &object.FloatSgl{Value: 1}},
		{name: "and", exp: infix(num(12), token.AND, num(10)), want: &object.Integer{Value: 8}},
		{name: "or", exp: infix(num(12), token.OR, num(10)), want: &object.Integer{Value: 14}},
		{name: "xor", exp: infix(num(12), token.XOR, num(10)), want: &object.Integer{Value: 6}},
		{name: "eqv", exp: infix(num(-1), token.EQV, num(0)), want: &object.Integer{Value: 0}},
		{name: "imp", exp: infix(num(0), token.IMP, num(0)), want: &object.Integer{Value: -1}},
		{name: "not", exp: not(num(0)), want: &object.Integer{Value: -1}},
		{name: "not long", exp: not(lng(0)), want: &object.IntDbl{Value: -1}},
		{name: "negate", exp: neg(sgl(1.5)), want: &object.FloatSgl{Value: -1.5}},
		{name: "concat", exp: infix(str("ab"), token.PLUS, str("cd")), want: &object.String{Value: "abcd"}},
		{name: "less", exp: infix(num(1), token.LT, dbl(1.5)), want: &object.Integer{Value: -1}},
		{name: "string order", exp: infix(str("B"), token.GT, str("a")), want: &object.Integer{Value: 0}},
		{name: "not equal", exp: infix(lng(3), token.NOT_EQ, num(3)), want: &object.Integer{Value: 0}},
		{name: "grouped", exp: infix(&ast.GroupedExpression{Token: tk("("), Exp: infix(num(1), token.PLUS, num(2))}, token.ASTERISK, num(3)), want: &object.Integer{Value: 9}},
	}

	env := evalEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(tt.exp, env))
		})
	}
}

func Test_CurrencyArithmetic(t *testing.T) {
	tests := []struct {
		exp  ast.Expression
		want string
	}{
		{exp: infix(cur("1.25"), token.PLUS, num(2)), want: "3.25"},
		{exp: infix(cur("10"), token.SLASH, num(3)), want: "3.3333"},
		{exp: infix(cur("0.00005"), token.PLUS, cur("0")), want: "0"},
		{exp: infix(cur("0.00015"), token.ASTERISK, num(1)), want: ".0002"},
		{exp: neg(cur("2.5")), want: "-2.5"},
		{exp: infix(cur("7"), token.BSLASH, num(2)), want: "3"},
	}

	env := evalEnv()
	for _, tt := range tests {
		t.Run(tt.exp.String(), func(t *testing.T) {
			res := Eval(tt.exp, env)
			require.False(t, isError(res), "%v", res)
			assert.Equal(t, tt.want, string(object.AppendNumber(nil, res)))
		})
	}
}

func Test_ArithmeticErrors(t *testing.T) {
	tests := []struct {
		name string
		exp  ast.Expression
		code int
	}{
		{name: "integer overflow", exp: infix(num(32767), token.PLUS, num(1)), code: berrors.Overflow},
		{name: "long overflow", exp: infix(lng(math.MaxInt32), token.ASTERISK, num(2)), code: berrors.Overflow},
		{name: "negate min", exp: neg(num(math.MinInt16)), code: berrors.Overflow},
		{name: "currency overflow", exp: infix(cur("900000000000000"), token.PLUS, cur("900000000000000")), code: berrors.Overflow},
		{name: "divide by zero", exp: infix(num(1), token.SLASH, num(0)), code: berrors.DivByZero},
		{name: "int divide by zero", exp: infix(num(1), token.BSLASH, num(0)), code: berrors.DivByZero},
		{name: "mod zero", exp: infix(num(1), token.MOD, sgl(0.4)), code: berrors.DivByZero},
		{name: "currency by zero", exp: infix(cur("1"), token.SLASH, num(0)), code: berrors.DivByZero},
		{name: "zero to negative", exp: infix(num(0), token.CARET, num(-1)), code: berrors.DivByZero},
		{name: "root of negative", exp: infix(num(-8), token.CARET, sgl(0.5)), code: berrors.IllegalFuncCallErr},
		{name: "string plus number", exp: infix(str("a"), token.PLUS, num(1)), code: berrors.TypeMismatch},
		{name: "string compare number", exp: infix(num(1), token.EQ, str("1")), code: berrors.TypeMismatch},
		{name: "currency with float", exp: infix(cur("1"), token.PLUS, sgl(1)), code: berrors.TypeMismatch},
		{name: "string minus", exp: infix(str("a"), token.MINUS, str("b")), code: berrors.TypeMismatch},
		{name: "negate string", exp: neg(str("a")), code: berrors.TypeMismatch},
		{name: "not string", exp: not(str("a")), code: berrors.TypeMismatch},
		{name: "and out of range", exp: infix(dbl(1e10), token.AND, num(1)), code: berrors.Overflow},
		{name: "long string", exp: infix(str(strings.Repeat("x", 20000)), token.PLUS, str(strings.Repeat("y", 20000))), code: berrors.String2Long},
	}

	env := evalEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Eval(tt.exp, env)
			err, ok := res.(*object.Error)
			require.True(t, ok, "got %v", res)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tokenOf(tt.exp).Col, err.Token.Col)
		})
	}
}

// narrowing to Single happens once, later trips through Double keep the value
func Test_SingleCoercion(t *testing.T) {
	values := []float64{1.0 / 3, 0.1, 123456.789, 9.99999999e-8, 3.4e38, 16777217}

	for _, v := range values {
		rr := runMain(t,
			let("s!", dbl(v)),
			let("d#", id("s!")),
			let("s2!", id("d#")),
			let("d2#", id("s2!")),
		)
		require.NoError(t, rr.err)
		assert.Equal(t, &object.FloatSgl{Value: float32(v)}, rr.value(t, "s!"))
		assert.Equal(t, rr.value(t, "s!"), rr.value(t, "s2!"))
		assert.Equal(t, rr.value(t, "d#"), rr.value(t, "d2#"))
		assert.Equal(t, &object.FloatDbl{Value: float64(float32(v))}, rr.value(t, "d#"))
	}
}

func Test_Relations(t *testing.T) {
	values := []ast.Expression{num(-2), lng(-1), sgl(0), dbl(0.5), num(1), lng(70000)}
	env := evalEnv()

	for i, l := range values {
		for j, r := range values {
			res := Eval(infix(l, token.LT, r), env)
			assert.Equal(t, object.Bool(i < j), res, "%s < %s", l.String(), r.String())

			res = Eval(infix(l, token.GTE, r), env)
			assert.Equal(t, object.Bool(i >= j), res, "%s >= %s", l.String(), r.String())
		}
	}
}

func Test_ConvertOnAssign(t *testing.T) {
	rr := runMain(t,
		let("a%", sgl(2.5)),
		let("b%", sgl(3.5)),
		let("c&", dbl(-2.5)),
		let("d@", num(3)),
		let("e!", dbl(1.0/3)),
		let("f#", sgl(0.1)),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 2}, rr.value(t, "a%"))
	assert.Equal(t, &object.Integer{Value: 4}, rr.value(t, "b%"))
	assert.Equal(t, &object.IntDbl{Value: -2}, rr.value(t, "c&"))
	assert.Equal(t, "3", string(object.AppendNumber(nil, rr.value(t, "d@"))))
	assert.Equal(t, &object.FloatSgl{Value: float32(1.0 / 3)}, rr.value(t, "e!"))
	assert.Equal(t, &object.FloatDbl{Value: float64(float32(0.1))}, rr.value(t, "f#"))

	kind, ok := object.KindOf(rr.value(t, "d@"))
	require.True(t, ok)
	assert.Equal(t, gwtypes.Currency, kind)
}
