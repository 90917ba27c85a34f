package evaluator

import (
	"testing"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/compile"
	"github.com/navionguy/qbasic/mocks"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trace(s string) *ast.LetStatement {
	return let("t$", infix(id("t$"), token.PLUS, str(s)))
}

func sharedVar(name string) *ast.DimStatement {
	return &ast.DimStatement{Token: tk("DIM"), Shared: true, Vars: []*ast.DimVar{{Name: id(name)}}}
}

func onLocal(name string) *ast.OnErrorStatement {
	st := onError(name)
	st.Local = true
	return st
}

func resumeNextHandler() *ast.OnErrorStatement {
	return &ast.OnErrorStatement{Token: tk("ON"), Action: ast.HandlerResumeNext}
}

func Test_OnErrorResumeNext(t *testing.T) {
	rr := runMain(t,
		resumeNextHandler(),
		let("x%", num(7)),
		let("x%", infix(num(1), token.SLASH, num(0))),
		let("y%", num(1)),
		let("e%", call("ERR")),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 7}, rr.value(t, "x%"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "y%"))
	assert.Equal(t, &object.Integer{Value: berrors.DivByZero}, rr.value(t, "e%"))
}

func Test_ResumeNextInsideLoop(t *testing.T) {
	// the statement after the fault is the rest of the loop body
	rr := runMain(t,
		resumeNextHandler(),
		forLoop("i%", num(1), num(3), nil,
			let("q%", infix(num(6), token.BSLASH, infix(id("i%"), token.MINUS, num(2)))),
			bump("n%"),
		),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 6}, rr.value(t, "q%"))
}

func Test_ResumeRetries(t *testing.T) {
	tick := routine("tick%", ast.FunctionRoutine, params("v%"),
		let("n%", infix(id("n%"), token.PLUS, num(1))),
		let("tick%", infix(num(10), token.BSLASH, id("v%"))),
	)
	prog := program([]ast.Statement{
		sharedVar("n%"),
		onError("fix"),
		let("q%", call("tick%", id("d%"))),
		end(),
		label("fix"),
		let("d%", num(2)),
		resume(ast.ResumeRetry, ""),
	}, tick)

	rr := execute(t, prog, nil)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 2}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 5}, rr.value(t, "q%"))
	assert.Equal(t, 0, rr.env.Err)
}

func Test_ResumeLoopTest(t *testing.T) {
	tests := []struct {
		name   string
		resume *ast.ResumeStatement
		after  int16
	}{
		{name: "retry runs the test again", resume: resume(ast.ResumeRetry, ""), after: 1},
		{name: "next leaves the loop", resume: resume(ast.ResumeNext, ""), after: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t,
				onError("fix"),
				&ast.DoStatement{Token: tk("DO"), Condition: infix(num(1), token.BSLASH, id("d%")), Until: true, Body: seq(bump("n%"))},
				let("after%", num(1)),
				end(),
				label("fix"),
				let("d%", num(1)),
				tt.resume,
			)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "n%"))
			assert.Equal(t, &object.Integer{Value: tt.after}, rr.value(t, "after%"))
		})
	}
}

func Test_ResumeForStep(t *testing.T) {
	// the step overflows past 32767, the retry only steps again
	rr := runMain(t,
		onError("fix"),
		forLoop("i%", num(32760), num(32767), nil, bump("n%")),
		let("after%", num(1)),
		end(),
		label("fix"),
		ifThen(id("h%"), resume(ast.ResumeNext, "")),
		let("h%", num(1)),
		let("i%", num(32765)),
		resume(ast.ResumeRetry, ""),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 10}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "after%"))
	assert.Equal(t, &object.Integer{Value: 32767}, rr.value(t, "i%"))
}

func Test_HaltedKeepsNoBlame(t *testing.T) {
	assert.Same(t, halted, blame(halted, num(1)))
	assert.Same(t, halted, halted.Blame(tk("LET")))
	assert.Empty(t, halted.Token.Literal)
}

func Test_ResumeModes(t *testing.T) {
	tests := []struct {
		name   string
		resume *ast.ResumeStatement
		exp    string
	}{
		{name: "next", resume: resume(ast.ResumeNext, ""), exp: "AHB"},
		{name: "label", resume: resume(ast.ResumeLabel, "there"), exp: "AHT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t,
				onError("handler"),
				trace("A"),
				&ast.ErrorStatement{Token: tk("ERROR"), Code: num(57)},
				trace("B"),
				end(),
				label("there"),
				trace("T"),
				end(),
				label("handler"),
				trace("H"),
				let("e%", call("ERR")),
				tt.resume,
			)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.String{Value: tt.exp}, rr.value(t, "t$"))
			assert.Equal(t, &object.Integer{Value: 57}, rr.value(t, "e%"))
		})
	}
}

func Test_ErlReportsLine(t *testing.T) {
	rr := runMain(t,
		onError("handler"),
		line(10), let("a%", num(1)),
		line(20), let("a%", infix(id("a%"), token.BSLASH, num(0))),
		line(30), end(),
		label("handler"),
		let("l%", call("ERL")),
		resume(ast.ResumeNext, ""),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 20}, rr.value(t, "l%"))
}

func Test_ResumeWithoutError(t *testing.T) {
	rr := runMain(t, resume(ast.ResumeRetry, ""))

	re := rr.fault(t)
	assert.Equal(t, berrors.ResumeWoError, re.Code)
	assert.Equal(t, berrors.KindResumeWithoutError, re.Kind)
}

func Test_HandlerFallsOffEnd(t *testing.T) {
	rr := runMain(t,
		onError("handler"),
		&ast.ErrorStatement{Token: tk("ERROR"), Code: num(5)},
		end(),
		label("handler"),
		let("x%", num(1)),
	)
	assert.Equal(t, berrors.NoResume, rr.fault(t).Code)
}

func Test_FaultInHandlerIsFatal(t *testing.T) {
	rr := runMain(t,
		onError("handler"),
		&ast.ErrorStatement{Token: tk("ERROR"), Code: num(5)},
		end(),
		label("handler"),
		let("x%", infix(num(1), token.BSLASH, num(0))),
		resume(ast.ResumeNext, ""),
	)
	re := rr.fault(t)
	assert.Equal(t, berrors.DivByZero, re.Code)
	assert.Equal(t, 1, rr.code)
}

func Test_HandlerDisabledWhileHandling(t *testing.T) {
	rr := runMain(t,
		onError("handler"),
		&ast.ErrorStatement{Token: tk("ERROR"), Code: num(52)},
		end(),
		label("handler"),
		onError("0"),
	)
	assert.Equal(t, 52, rr.fault(t).Code)
}

func Test_ErrorStatementRange(t *testing.T) {
	rr := runMain(t, &ast.ErrorStatement{Token: tk("ERROR"), Code: num(0)})
	assert.Equal(t, berrors.IllegalFuncCallErr, rr.fault(t).Code)

	rr = runMain(t, &ast.ErrorStatement{Token: tk("ERROR"), Code: num(200)})
	re := rr.fault(t)
	assert.Equal(t, 200, re.Code)
	assert.Equal(t, "Unprintable error", re.Message)
}

func Test_LocalHandlerScope(t *testing.T) {
	s := routine("s", ast.SubRoutine, nil,
		onLocal("lh"),
		let("q%", infix(num(1), token.BSLASH, num(0))),
		trace("s"),
		&ast.ExitStatement{Token: tk("EXIT"), Kind: ast.ExitSub},
		label("lh"),
		trace("L"),
		resume(ast.ResumeNext, ""),
	)
	prog := program([]ast.Statement{
		sharedVar("t$"),
		onError("gh"),
		callSub("s"),
		let("z%", infix(num(1), token.BSLASH, num(0))),
		trace("after"),
		end(),
		label("gh"),
		trace("G"),
		resume(ast.ResumeNext, ""),
	}, s)

	rr := execute(t, prog, nil)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "LsGafter"}, rr.value(t, "t$"))
}

func Test_LocalHandlerGoneAfterReturn(t *testing.T) {
	s := routine("s", ast.SubRoutine, nil,
		onLocal("lh"),
		&ast.ExitStatement{Token: tk("EXIT"), Kind: ast.ExitSub},
		label("lh"),
		resume(ast.ResumeNext, ""),
	)
	prog := program([]ast.Statement{
		callSub("s"),
		let("z%", infix(num(1), token.BSLASH, num(0))),
	}, s)

	rr := execute(t, prog, nil)
	re := rr.fault(t)
	assert.Equal(t, berrors.DivByZero, re.Code)
	assert.Empty(t, re.Routine)
}

func Test_GlobalHandlerUnwindsProcedures(t *testing.T) {
	inner := routine("inner", ast.SubRoutine, nil,
		trace("i"),
		&ast.ErrorStatement{Token: tk("ERROR"), Code: num(11)},
		trace("never"),
	)
	outer := routine("outer", ast.SubRoutine, nil,
		trace("o"),
		callSub("inner"),
		trace("never"),
	)
	prog := program([]ast.Statement{
		sharedVar("t$"),
		onError("gh"),
		callSub("outer"),
		trace("back"),
		end(),
		label("gh"),
		trace("G"),
		resume(ast.ResumeNext, ""),
	}, inner, outer)

	rr := execute(t, prog, nil)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "oiGback"}, rr.value(t, "t$"))
	assert.Equal(t, 1, rr.env.Depth())
}

func Test_FaultInsideFunctionExpression(t *testing.T) {
	f := routine("f%", ast.FunctionRoutine, nil,
		onLocal("lh"),
		let("f%", infix(num(1), token.BSLASH, num(0))),
		let("f%", num(9)),
		&ast.ExitStatement{Token: tk("EXIT"), Kind: ast.ExitFunction},
		label("lh"),
		let("f%", num(-1)),
		resume(ast.ResumeNext, ""),
	)
	prog := program([]ast.Statement{
		let("a%", infix(call("f%"), token.PLUS, num(1))),
	}, f)

	rr := execute(t, prog, nil)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 10}, rr.value(t, "a%"))
}

func Test_EndInsideFunction(t *testing.T) {
	f := routine("f%", ast.FunctionRoutine, nil, &ast.EndStatement{Token: tk("END"), Code: num(4)})
	prog := program([]ast.Statement{
		let("a%", infix(call("f%"), token.PLUS, num(1))),
		let("b%", num(1)),
	}, f)

	rr := execute(t, prog, nil)
	require.NoError(t, rr.err)
	assert.Equal(t, 4, rr.code)
	assert.Equal(t, &object.Integer{Value: 0}, rr.value(t, "b%"))
}

func Test_HandlersConfinedToModule(t *testing.T) {
	s := routine("s", ast.SubRoutine, nil, onError("gh"))
	prog := program([]ast.Statement{label("gh")}, s)

	err := compile.Resolve(prog, compile.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module-level")
}

func Test_OverflowBlame(t *testing.T) {
	tests := []struct {
		name   string
		target string
		exp    ast.Expression
		op     string
	}{
		{name: "integer max", target: "a%", exp: infix(num(32767), token.PLUS, num(1)), op: token.PLUS},
		{name: "integer min", target: "a%", exp: infix(num(-32768), token.MINUS, num(1)), op: token.MINUS},
		{name: "integer multiply", target: "a%", exp: infix(num(200), token.ASTERISK, num(200)), op: token.ASTERISK},
		{name: "long max", target: "a&", exp: infix(lng(2147483647), token.PLUS, num(1)), op: token.PLUS},
		{name: "long min", target: "a&", exp: infix(lng(-2147483648), token.MINUS, lng(1)), op: token.MINUS},
		{name: "currency", target: "a@", exp: infix(cur("922337203685477"), token.ASTERISK, num(10)), op: token.ASTERISK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t, let(tt.target, tt.exp))

			re := rr.fault(t)
			assert.Equal(t, berrors.Overflow, re.Code)
			assert.Equal(t, berrors.KindOverflow, re.Kind)
			assert.Equal(t, tt.op, re.Token.Literal)
			assert.Equal(t, 7, re.Token.Col)
		})
	}
}

func Test_AssignmentOverflow(t *testing.T) {
	rr := runMain(t, let("a%", lng(40000)))

	re := rr.fault(t)
	assert.Equal(t, berrors.Overflow, re.Code)
	assert.Equal(t, "a%", re.Token.Literal)
}

func Test_FatalFaultLogsAndReturns(t *testing.T) {
	prog := ast.NewProgram(seq(let("a$", num(1))))
	require.NoError(t, compile.Resolve(prog, compile.DefaultOptions()))

	env := object.NewEnvironment(prog, mocks.NewMockTerm())
	code, err := Run(prog, env)

	assert.Equal(t, 1, code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Type mismatch")
}
