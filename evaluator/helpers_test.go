package evaluator

import (
	"strings"
	"testing"
	"time"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/compile"
	"github.com/navionguy/qbasic/mocks"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// tree builders, the parser normally produces these

func tk(lit string) token.Token {
	return token.Token{Type: token.IDENT, Literal: lit, Line: 1, Col: 1}
}

func opTk(op string, col int) token.Token {
	return token.Token{Type: token.TokenType(op), Literal: op, Line: 1, Col: col}
}

func id(name string) *ast.Identifier {
	return &ast.Identifier{Token: tk(name), Name: name}
}

// arr names a whole array, as in LBOUND(a) or CALL s(a())
func arr(name string) *ast.Identifier {
	return &ast.Identifier{Token: tk(name), Name: name, Slot: ast.Slot{Array: true}}
}

func idx(name string, subs ...ast.Expression) *ast.IndexExpression {
	return &ast.IndexExpression{Token: tk("("), Array: id(name), Indices: subs}
}

func field(base ast.Assignable, name string) *ast.FieldExpression {
	return &ast.FieldExpression{Token: tk("."), Base: base, Name: name}
}

func num(v int16) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Token: tk("num"), Value: v}
}

func lng(v int32) *ast.DblIntegerLiteral {
	return &ast.DblIntegerLiteral{Token: tk("lng"), Value: v}
}

func sgl(v float32) *ast.FloatSingleLiteral {
	return &ast.FloatSingleLiteral{Token: tk("sgl"), Value: v}
}

func dbl(v float64) *ast.FloatDoubleLiteral {
	return &ast.FloatDoubleLiteral{Token: tk("dbl"), Value: v}
}

func cur(s string) *ast.CurrencyLiteral {
	return &ast.CurrencyLiteral{Token: tk(s), Value: decimal.RequireFromString(s)}
}

func str(s string) *ast.StringLiteral {
	return &ast.StringLiteral{Token: tk(s), Value: s}
}

func infix(l ast.Expression, op string, r ast.Expression) *ast.InfixExpression {
	return &ast.InfixExpression{Token: opTk(op, 7), Left: l, Operator: op, Right: r}
}

func neg(r ast.Expression) *ast.PrefixExpression {
	return &ast.PrefixExpression{Token: opTk(token.MINUS, 5), Operator: token.MINUS, Right: r}
}

func not(r ast.Expression) *ast.PrefixExpression {
	return &ast.PrefixExpression{Token: opTk(token.NOT, 5), Operator: token.NOT, Right: r}
}

func call(name string, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Token: tk(name), Name: name, Arguments: args}
}

func let(name string, val ast.Expression) *ast.LetStatement {
	return &ast.LetStatement{Token: tk("LET"), Name: id(name), Value: val}
}

func letTo(a ast.Assignable, val ast.Expression) *ast.LetStatement {
	return &ast.LetStatement{Token: tk("LET"), Name: a, Value: val}
}

func seq(sts ...ast.Statement) *ast.Sequence {
	return &ast.Sequence{Statements: sts}
}

func label(name string) *ast.LabelStatement {
	return &ast.LabelStatement{Token: tk(name), Name: name}
}

func line(n int32) *ast.LineNumStmt {
	return &ast.LineNumStmt{Token: tk("line"), Value: n}
}

func goTo(name string) *ast.GotoStatement {
	return &ast.GotoStatement{Token: tk("GOTO"), Label: name}
}

func goSub(name string) *ast.GosubStatement {
	return &ast.GosubStatement{Token: tk("GOSUB"), Label: name}
}

func ret() *ast.ReturnStatement {
	return &ast.ReturnStatement{Token: tk("RETURN")}
}

func end() *ast.EndStatement {
	return &ast.EndStatement{Token: tk("END")}
}

// printLn prints items separated by ';' and ends the line
func printLn(items ...ast.Expression) *ast.PrintStatement {
	seps := make([]string, len(items))
	for i := range items[:len(items)-1] {
		seps[i] = token.SEMICOLON
	}
	return &ast.PrintStatement{Token: tk("PRINT"), Items: items, Separators: seps}
}

func ifThen(cond ast.Expression, then ...ast.Statement) *ast.IfStatement {
	return &ast.IfStatement{Token: tk("IF"), Conditions: []ast.Expression{cond}, Bodies: []*ast.Sequence{seq(then...)}}
}

func forLoop(counter string, start, stop, step ast.Expression, body ...ast.Statement) *ast.ForStatement {
	return &ast.ForStatement{Token: tk("FOR"), Counter: id(counter), Start: start, End: stop, Step: step, Body: seq(body...)}
}

func onError(name string) *ast.OnErrorStatement {
	st := &ast.OnErrorStatement{Token: tk("ON"), Action: ast.HandlerGoto, Label: name}
	if name == "0" {
		st.Action = ast.HandlerDisable
	}
	return st
}

func resume(mode ast.ResumeMode, name string) *ast.ResumeStatement {
	return &ast.ResumeStatement{Token: tk("RESUME"), Mode: mode, Label: name}
}

func routine(name string, kind ast.RoutineKind, params []*ast.Param, body ...ast.Statement) *ast.Routine {
	return &ast.Routine{Token: tk(name), Name: name, Kind: kind, Params: params, Body: seq(body...)}
}

func params(names ...string) []*ast.Param {
	ps := []*ast.Param{}
	for _, n := range names {
		p := &ast.Param{Name: id(strings.TrimSuffix(n, "()"))}
		p.Array = strings.HasSuffix(n, "()")
		ps = append(ps, p)
	}
	return ps
}

func callSub(name string, args ...ast.Expression) *ast.CallStatement {
	return &ast.CallStatement{Token: tk("CALL"), Name: name, Arguments: args}
}

// runResult is everything a test may want to look at after a run
type runResult struct {
	prog *ast.Program
	env  *object.Environment
	term *mocks.MockTerm
	code int
	err  error
}

// value reads a main module variable after the run
func (rr *runResult) value(t *testing.T, name string) object.Object {
	t.Helper()
	key := strings.ToUpper(name)
	for i, l := range rr.prog.Main.Locals {
		if l.Name == key {
			return rr.env.MainFrame().Vars[i].Value
		}
	}
	require.Failf(t, "no such variable", "%s", name)
	return nil
}

func (rr *runResult) output() string {
	return rr.term.Output.String()
}

// fault returns the fatal error of the run
func (rr *runResult) fault(t *testing.T) *berrors.RuntimeError {
	t.Helper()
	require.Error(t, rr.err)
	re, ok := rr.err.(*berrors.RuntimeError)
	require.True(t, ok, "expected RuntimeError, got %T", rr.err)
	return re
}

// execute resolves and runs prog against a mock console
func execute(t *testing.T, prog *ast.Program, setup func(env *object.Environment), input ...string) *runResult {
	t.Helper()
	require.NoError(t, compile.Resolve(prog, compile.DefaultOptions()))

	term := mocks.NewMockTerm(input...)
	env := object.NewEnvironment(prog, term)
	env.Sleep = func(time.Duration) {}
	if setup != nil {
		setup(env)
	}

	code, err := Run(prog, env)
	return &runResult{prog: prog, env: env, term: term, code: code, err: err}
}

// runMain runs a main module made of sts
func runMain(t *testing.T, sts ...ast.Statement) *runResult {
	t.Helper()
	return execute(t, ast.NewProgram(seq(sts...)), nil)
}

// program builds a program with procedures
func program(main []ast.Statement, procs ...*ast.Routine) *ast.Program {
	prog := ast.NewProgram(seq(main...))
	for _, r := range procs {
		prog.AddRoutine(r)
	}
	return prog
}
