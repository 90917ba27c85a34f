package evaluator

import (
	"testing"
	"time"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/mocks"
	"github.com/navionguy/qbasic/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuiltinResults(t *testing.T) {
	rr := runMain(t,
		let("a$", call("LEFT$", str("hello"), num(2))),
		let("b$", call("MID$", str("hello"), num(2), num(3))),
		let("c%", call("LEN", str("hello"))),
		let("d$", call("STR$", num(7))),
		let("e#", call("VAL", str("2.5"))),
		let("f%", call("INSTR", str("abcabc"), str("ca"))),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "he"}, rr.value(t, "a$"))
	assert.Equal(t, &object.String{Value: "ell"}, rr.value(t, "b$"))
	assert.Equal(t, &object.Integer{Value: 5}, rr.value(t, "c%"))
	assert.Equal(t, &object.String{Value: " 7"}, rr.value(t, "d$"))
	assert.Equal(t, &object.FloatDbl{Value: 2.5}, rr.value(t, "e#"))
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "f%"))
}

func Test_BuiltinErrorBlame(t *testing.T) {
	tests := []struct {
		name string
		exp  ast.Expression
		code int
	}{
		{name: "negative length", exp: call("LEFT$", str("x"), neg(num(1))), code: berrors.IllegalFuncCallErr},
		{name: "negative root", exp: call("SQR", neg(num(1))), code: berrors.IllegalFuncCallErr},
		{name: "string for number", exp: call("ABS", str("x")), code: berrors.TypeMismatch},
		{name: "no such dimension", exp: call("UBOUND", arr("a%"), num(3)), code: berrors.SubscriptRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t, dim("a%", num(4)), let("r", tt.exp))
			re := rr.fault(t)
			assert.Equal(t, tt.code, re.Code)
			assert.Equal(t, tt.exp.(*ast.CallExpression).Name, re.Token.Literal)
		})
	}
}

func Test_ArrayBounds(t *testing.T) {
	rr := runMain(t,
		&ast.DimStatement{Token: tk("DIM"), Vars: []*ast.DimVar{{Name: id("a%"), Bounds: []ast.Bound{
			{Lower: neg(num(3)), Upper: num(3)},
			{Lower: num(1), Upper: lng(40000)},
		}}}},
		let("l%", call("LBOUND", arr("a%"))),
		let("u%", call("UBOUND", arr("a%"))),
		let("l2%", call("LBOUND", arr("a%"), num(2))),
		let("u2&", call("UBOUND", arr("a%"), num(2))),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: -3}, rr.value(t, "l%"))
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "u%"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "l2%"))
	assert.Equal(t, &object.IntDbl{Value: 40000}, rr.value(t, "u2&"))
}

func Test_Inkey(t *testing.T) {
	prog := ast.NewProgram(seq(
		let("a$", call("INKEY$")),
		let("b$", call("INKEY$")),
		let("c$", call("INKEY$")),
	))
	rr := execute(t, prog, func(env *object.Environment) {
		env.Terminal().(*mocks.MockTerm).Keys = []byte("xy")
	})
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "x"}, rr.value(t, "a$"))
	assert.Equal(t, &object.String{Value: "y"}, rr.value(t, "b$"))
	assert.Equal(t, &object.String{Value: ""}, rr.value(t, "c$"))
}

func Test_Timer(t *testing.T) {
	noon := time.Date(2024, 3, 1, 12, 0, 30, 0, time.Local)
	rr := execute(t, ast.NewProgram(seq(let("t!", call("TIMER")))), func(env *object.Environment) {
		env.Now = func() time.Time { return noon }
	})
	require.NoError(t, rr.err)
	assert.Equal(t, &object.FloatSgl{Value: 43230}, rr.value(t, "t!"))
}

func Test_RandomizeRepeats(t *testing.T) {
	seed := &ast.RandomizeStatement{Token: tk("RANDOMIZE"), Seed: num(42)}
	rr := runMain(t,
		seed,
		let("a!", call("RND")),
		let("b!", call("RND", num(0))),
		seed,
		let("c!", call("RND")),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, rr.value(t, "a!"), rr.value(t, "b!"))
	assert.Equal(t, rr.value(t, "a!"), rr.value(t, "c!"))

	v := rr.value(t, "a!").(*object.FloatSgl).Value
	assert.True(t, v >= 0 && v < 1)
}

func Test_RandomizeNeedsNumber(t *testing.T) {
	rr := runMain(t, &ast.RandomizeStatement{Token: tk("RANDOMIZE"), Seed: str("x")})
	assert.Equal(t, berrors.TypeMismatch, rr.fault(t).Code)
}
