package evaluator

import (
	"testing"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/compile"
	"github.com/navionguy/qbasic/mocks"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bump(name string) *ast.LetStatement {
	return let(name, infix(id(name), token.PLUS, num(1)))
}

func Test_ForZeroIterations(t *testing.T) {
	counters := []string{"i%", "i&", "i!", "i#", "i@"}

	for _, c := range counters {
		t.Run(c, func(t *testing.T) {
			rr := runMain(t,
				forLoop(c, num(5), num(1), nil, bump("n%")),
				forLoop(c, num(1), num(5), neg(num(1)), bump("n%")),
			)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.Integer{Value: 0}, rr.value(t, "n%"))
		})
	}
}

func Test_ForIterations(t *testing.T) {
	tests := []struct {
		name    string
		loop    *ast.ForStatement
		count   int16
		counter object.Object
	}{
		{name: "integer step 3", loop: forLoop("i%", num(1), num(10), num(3), bump("n%")),
			count: 4, counter: &object.Integer{Value: 13}},
		{name: "long counting down", loop: forLoop("i&", num(3), num(1), neg(num(1)), bump("n%")),
			count: 3, counter: &object.IntDbl{Value: 0}},
		{name: "single half steps", loop: forLoop("i!", num(0), num(2), sgl(0.5), bump("n%")),
			count: 5, counter: &object.FloatSgl{Value: 2.5}},
		{name: "double", loop: forLoop("i#", dbl(1), dbl(2), nil, bump("n%")),
			count: 2, counter: &object.FloatDbl{Value: 3}},
		{name: "currency", loop: forLoop("i@", cur("0.5"), cur("1.5"), cur("0.25"), bump("n%")),
			count: 5, counter: &object.Currency{Value: decimal.RequireFromString("1.75")}},
		{name: "float bound out of integer range", loop: forLoop("i%", num(1), dbl(40000), nil, bump("n%")),
			count: 0, counter: &object.Integer{Value: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t, tt.loop)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.Integer{Value: tt.count}, rr.value(t, "n%"))

			got := rr.value(t, tt.loop.Counter.Name)
			if c, ok := tt.counter.(*object.Currency); ok {
				assert.True(t, c.Value.Equal(got.(*object.Currency).Value), "counter %s", got.Inspect())
				return
			}
			assert.Equal(t, tt.counter, got)
		})
	}
}

func Test_ForCounterOverflow(t *testing.T) {
	rr := runMain(t, forLoop("i%", num(32766), num(32767), nil, bump("n%")))

	re := rr.fault(t)
	assert.Equal(t, berrors.Overflow, re.Code)
	assert.Equal(t, &object.Integer{Value: 2}, rr.value(t, "n%"))
	assert.Equal(t, 1, rr.code)
}

func Test_ExitFor(t *testing.T) {
	rr := runMain(t,
		forLoop("i%", num(1), num(10), nil,
			bump("n%"),
			ifThen(infix(id("i%"), token.EQ, num(3)), &ast.ExitStatement{Token: tk("EXIT"), Kind: ast.ExitFor}),
		),
		let("after%", id("i%")),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "after%"))
}

func Test_DoLoops(t *testing.T) {
	lt5 := infix(id("i%"), token.LT, num(5))

	tests := []struct {
		name string
		loop *ast.DoStatement
		exp  int16
	}{
		{name: "while at top", loop: &ast.DoStatement{Token: tk("DO"), Condition: lt5, TestFirst: true, Body: seq(bump("i%"))}, exp: 5},
		{name: "until at bottom", loop: &ast.DoStatement{Token: tk("DO"), Condition: infix(id("i%"), token.GTE, num(3)), Until: true, Body: seq(bump("i%"))}, exp: 3},
		{name: "bottom test runs once", loop: &ast.DoStatement{Token: tk("DO"), Condition: infix(id("i%"), token.LT, num(0)), Body: seq(bump("i%"))}, exp: 1},
		{name: "top test runs never", loop: &ast.DoStatement{Token: tk("DO"), Condition: infix(id("i%"), token.LT, num(0)), TestFirst: true, Body: seq(bump("i%"))}, exp: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := runMain(t, tt.loop)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.Integer{Value: tt.exp}, rr.value(t, "i%"))
		})
	}
}

func Test_EndlessDoYields(t *testing.T) {
	yields := 0
	prog := ast.NewProgram(seq(&ast.DoStatement{Token: tk("DO"), Body: seq(
		bump("i%"),
		ifThen(infix(id("i%"), token.EQ, num(3)), &ast.ExitStatement{Token: tk("EXIT"), Kind: ast.ExitDo}),
	)}))

	rr := execute(t, prog, func(env *object.Environment) {
		env.Yield = func() { yields++ }
	})
	require.NoError(t, rr.err)
	assert.Equal(t, 2, yields)
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "i%"))
}

func selectOn(subject ast.Expression, cases []*ast.CaseClause, bodies ...*ast.Sequence) *ast.SelectStatement {
	return &ast.SelectStatement{Token: tk("SELECT"), Subject: subject, Cases: cases, Bodies: bodies}
}

func caseOf(tests ...ast.CaseTest) *ast.CaseClause {
	return &ast.CaseClause{Token: tk("CASE"), Tests: tests}
}

func Test_SelectCase(t *testing.T) {
	tests := []struct {
		name    string
		subject ast.Expression
		exp     string
	}{
		{name: "first match wins", subject: num(5), exp: "range"},
		{name: "relation", subject: num(20), exp: "big"},
		{name: "no match uses else", subject: neg(num(3)), exp: "else"},
		{name: "double subject", subject: dbl(7.5), exp: "range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := selectOn(tt.subject,
				[]*ast.CaseClause{
					caseOf(ast.CaseTest{Op: "TO", Value: num(1), Upper: num(10)}),
					caseOf(ast.CaseTest{Op: token.EQ, Value: num(5)}),
					caseOf(ast.CaseTest{Op: token.GT, Value: num(10)}),
					{Token: tk("CASE"), Else: true},
				},
				seq(let("s$", infix(id("s$"), token.PLUS, str("range")))),
				seq(let("s$", infix(id("s$"), token.PLUS, str("five")))),
				seq(let("s$", infix(id("s$"), token.PLUS, str("big")))),
				seq(let("s$", infix(id("s$"), token.PLUS, str("else")))),
			)
			rr := runMain(t, st)
			require.NoError(t, rr.err)
			assert.Equal(t, &object.String{Value: tt.exp}, rr.value(t, "s$"))
		})
	}
}

func Test_SelectStrings(t *testing.T) {
	st := selectOn(str("b"),
		[]*ast.CaseClause{
			caseOf(ast.CaseTest{Op: token.EQ, Value: str("x")}, ast.CaseTest{Op: "TO", Value: str("a"), Upper: str("c")}),
		},
		seq(let("hit%", num(1))),
	)
	rr := runMain(t, st)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "hit%"))

	bad := selectOn(str("b"), []*ast.CaseClause{caseOf(ast.CaseTest{Op: token.EQ, Value: num(1)})}, seq())
	rr = runMain(t, bad)
	assert.Equal(t, berrors.TypeMismatch, rr.fault(t).Code)
}

func Test_IfElseIf(t *testing.T) {
	build := func(v int16) *ast.IfStatement {
		return &ast.IfStatement{
			Token:      tk("IF"),
			Conditions: []ast.Expression{infix(num(v), token.LT, num(0)), infix(num(v), token.EQ, num(0))},
			Bodies: []*ast.Sequence{
				seq(let("s$", str("neg"))),
				seq(let("s$", str("zero"))),
				seq(let("s$", str("pos"))),
			},
		}
	}

	for v, exp := range map[int16]string{-4: "neg", 0: "zero", 9: "pos"} {
		rr := runMain(t, build(v))
		require.NoError(t, rr.err)
		assert.Equal(t, &object.String{Value: exp}, rr.value(t, "s$"))
	}
}

func Test_GosubReturnOrder(t *testing.T) {
	add := func(s string) *ast.LetStatement {
		return let("s$", infix(id("s$"), token.PLUS, str(s)))
	}

	rr := runMain(t,
		goSub("a"),
		add("."),
		end(),
		label("a"), add("a"), goSub("b"), add("A"), ret(),
		label("b"), add("b"), ret(),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "abA."}, rr.value(t, "s$"))
}

func Test_DeepGosub(t *testing.T) {
	rr := runMain(t,
		goSub("down"),
		let("done%", num(1)),
		end(),
		label("down"),
		bump("n&"),
		ifThen(infix(id("n&"), token.LT, lng(40000)), goSub("down")),
		ret(),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.IntDbl{Value: 40000}, rr.value(t, "n&"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "done%"))
	assert.Equal(t, 0, rr.env.MainFrame().GosubDepth())
}

func Test_ReturnWithoutGosub(t *testing.T) {
	rr := runMain(t, let("x%", num(1)), ret())

	re := rr.fault(t)
	assert.Equal(t, berrors.ReturnWoGosub, re.Code)
	assert.Equal(t, berrors.KindReturnWithoutGosub, re.Kind)
	assert.Equal(t, "RETURN", re.Token.Literal)
}

func Test_ReturnToLabel(t *testing.T) {
	rr := runMain(t,
		goSub("sub1"),
		let("skipped%", num(1)),
		label("back"),
		let("done%", num(1)),
		end(),
		label("sub1"),
		&ast.ReturnStatement{Token: tk("RETURN"), Label: "back"},
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 0}, rr.value(t, "skipped%"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "done%"))
}

func Test_OnGoto(t *testing.T) {
	tests := []struct {
		sel   int16
		gosub bool
		exp   string
	}{
		{sel: 1, exp: "one"},
		{sel: 2, exp: "two"},
		{sel: 0, exp: "fall"},
		{sel: 3, exp: "fall"},
		{sel: 2, gosub: true, exp: "twofall"},
	}

	for _, tt := range tests {
		st := &ast.OnGotoStatement{Token: tk("ON"), Selector: num(tt.sel), Labels: []string{"one", "two"}, Gosub: tt.gosub}
		tail := []ast.Statement{
			label("one"), let("s$", infix(id("s$"), token.PLUS, str("one"))), end(),
			label("two"), let("s$", infix(id("s$"), token.PLUS, str("two"))),
		}
		if tt.gosub {
			tail = append(tail, ret())
		} else {
			tail = append(tail, end())
		}
		sts := append([]ast.Statement{st, let("s$", infix(id("s$"), token.PLUS, str("fall"))), end()}, tail...)

		rr := runMain(t, sts...)
		require.NoError(t, rr.err)
		assert.Equal(t, &object.String{Value: tt.exp}, rr.value(t, "s$"), "ON %d", tt.sel)
	}

	rr := runMain(t, &ast.OnGotoStatement{Token: tk("ON"), Selector: num(300), Labels: []string{"x"}}, label("x"))
	assert.Equal(t, berrors.IllegalFuncCallErr, rr.fault(t).Code)
}

func Test_GotoIntoFor(t *testing.T) {
	rr := runMain(t,
		forLoop("i%", num(1), num(3), nil,
			label("inside"),
			bump("n%"),
		),
		ifThen(infix(id("once%"), token.EQ, num(0)),
			let("once%", num(1)),
			goTo("inside"),
		),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 4}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 5}, rr.value(t, "i%"))
}

func Test_GotoIntoRunningFor(t *testing.T) {
	// jumping back into the body keeps the limit the loop started with
	rr := runMain(t,
		let("limit%", num(3)),
		forLoop("i%", num(1), id("limit%"), nil,
			label("top"),
			bump("n%"),
			let("limit%", num(100)),
			ifThen(infix(id("n%"), token.EQ, num(1)), goTo("top")),
		),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 4}, rr.value(t, "n%"))
	assert.Equal(t, &object.Integer{Value: 4}, rr.value(t, "i%"))
}

func Test_GotoIntoIfArm(t *testing.T) {
	add := func(s string) *ast.LetStatement {
		return let("s$", infix(id("s$"), token.PLUS, str(s)))
	}
	rr := runMain(t,
		goTo("arm"),
		&ast.IfStatement{
			Token:      tk("IF"),
			Conditions: []ast.Expression{num(0)},
			Bodies: []*ast.Sequence{
				seq(add("skipped"), label("arm"), add("in")),
				seq(add("else")),
			},
		},
		add("out"),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.String{Value: "inout"}, rr.value(t, "s$"))
}

func Test_GotoIntoDo(t *testing.T) {
	rr := runMain(t,
		goTo("body"),
		&ast.DoStatement{Token: tk("DO"), Condition: infix(id("i%"), token.LT, num(3)), TestFirst: true, Body: seq(
			let("skipped%", num(1)),
			label("body"),
			bump("i%"),
		)},
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 3}, rr.value(t, "i%"))
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "skipped%"))
}

func Test_LineNumbers(t *testing.T) {
	rr := runMain(t,
		line(10), let("a%", num(1)),
		line(20), goTo("40"),
		line(30), let("a%", num(99)),
		line(40), bump("a%"),
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 2}, rr.value(t, "a%"))
}

func Test_EndStatement(t *testing.T) {
	ended := -1
	prog := ast.NewProgram(seq(
		let("a%", num(1)),
		&ast.EndStatement{Token: tk("END"), Code: num(3)},
		let("a%", num(2)),
	))
	rr := execute(t, prog, func(env *object.Environment) {
		env.OnEnd = func(code int) { ended = code }
	})

	require.NoError(t, rr.err)
	assert.Equal(t, 3, rr.code)
	assert.Equal(t, 3, ended)
	assert.Equal(t, 3, rr.env.ExitCode)
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "a%"))
}

func Test_StopStatement(t *testing.T) {
	rr := runMain(t, let("a%", num(1)), &ast.StopStatement{Token: tk("STOP")}, let("a%", num(2)))

	require.NoError(t, rr.err)
	assert.Equal(t, 0, rr.code)
	assert.Equal(t, &object.Integer{Value: 1}, rr.value(t, "a%"))
	assert.Equal(t, "0:1", rr.env.CurrentPath().String())
}

func Test_Stepper(t *testing.T) {
	seen := []string{}
	prog := ast.NewProgram(seq(
		let("a%", num(1)),
		ifThen(num(1), let("a%", num(2)), let("a%", num(3))),
		let("a%", num(4)),
	))

	rr := execute(t, prog, func(env *object.Environment) {
		env.Stepper = func(r *ast.Routine, p ast.Path, st ast.Statement) bool {
			seen = append(seen, p.String())
			return len(seen) == 4
		}
	})

	require.NoError(t, rr.err)
	assert.Equal(t, []string{"0:0", "0:1", "0:1/0:0", "0:1/0:1"}, seen)
	assert.Equal(t, &object.Integer{Value: 2}, rr.value(t, "a%"))
}

func Test_BreakKey(t *testing.T) {
	prog := ast.NewProgram(seq(let("a%", num(1))))
	require.NoError(t, compile.Resolve(prog, compile.DefaultOptions()))

	term := mocks.NewMockTerm()
	term.Break = true
	env := object.NewEnvironment(prog, term)
	code, err := Run(prog, env)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, &object.Integer{Value: 0}, env.MainFrame().Vars[0].Value)
}

func Test_RunPanics(t *testing.T) {
	prog := ast.NewProgram(seq())
	env := object.NewEnvironment(prog, mocks.NewMockTerm())
	assert.Panics(t, func() { Run(prog, env) })

	require.NoError(t, compile.Resolve(prog, compile.DefaultOptions()))
	env.PushFrame(prog.Main)
	assert.Panics(t, func() { Run(prog, env) })
}

func Test_ClearStatement(t *testing.T) {
	rr := runMain(t,
		let("a%", num(5)),
		&ast.DimStatement{Token: tk("DIM"), Vars: []*ast.DimVar{{Name: id("b%"), Bounds: []ast.Bound{{Upper: num(3)}}}}},
		&ast.ClearCommand{Token: tk("CLEAR")},
		let("c%", id("a%")),
		&ast.DimStatement{Token: tk("DIM"), Vars: []*ast.DimVar{{Name: id("b%"), Bounds: []ast.Bound{{Upper: num(3)}}}}},
	)
	require.NoError(t, rr.err)
	assert.Equal(t, &object.Integer{Value: 0}, rr.value(t, "c%"))
}

func Test_ClearInProcedure(t *testing.T) {
	prog := program(
		[]ast.Statement{callSub("wipe")},
		routine("wipe", ast.SubRoutine, nil, line(100), &ast.ClearCommand{Token: tk("CLEAR")}),
	)
	rr := execute(t, prog, nil)

	re := rr.fault(t)
	assert.Equal(t, berrors.IllegalFuncCallErr, re.Code)
	assert.Equal(t, "wipe", re.Routine)
	assert.Equal(t, 100, re.Line)
	assert.Contains(t, re.Error(), "Illegal function call in 100 (wipe)")
}

func Test_ExpressionEval(t *testing.T) {
	prog := ast.NewProgram(seq())
	env := object.NewEnvironment(prog, mocks.NewMockTerm())

	assert.Equal(t, &object.Integer{Value: 7}, Eval(infix(num(3), token.PLUS, num(4)), env))
	assert.Equal(t, &object.String{Value: "ABC"}, Eval(call("UCASE$", str("abc")), env))
}
