// Package compile resolves a parsed program so the evaluator can run it.
// Variables get frame slots, labels become paths, calls are bound to
// their routines and every DATA constant is gathered in source order.
package compile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/builtins"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
)

// Options changes what the resolver accepts
type Options struct {
	// HandlersTargetMain lets ON ERROR GOTO inside a procedure name
	// a label in the main module
	HandlersTargetMain bool
}

// DefaultOptions is how QBasic itself behaves
func DefaultOptions() Options {
	return Options{HandlersTargetMain: true}
}

type resolver struct {
	prog     *ast.Program
	opts     Options
	errs     berrors.CompileErrors
	routines []*ast.Routine           // main module first, then source order
	marks    map[*ast.Routine]map[string]int // DATA index at each label
	main     *scope
	shared   map[string]int // main module slots of DIM SHARED names
}

type scope struct {
	r        *ast.Routine
	vars     map[string]int
	outer    *scope // DEF FN bodies see the main module variables
	doDepth  int
	forDepth int
}

// Resolve fills in slots, targets and bindings in place.
// Everything wrong is reported at once as berrors.CompileErrors.
func Resolve(prog *ast.Program, opts Options) error {
	rs := &resolver{
		prog:   prog,
		opts:   opts,
		marks:  map[*ast.Routine]map[string]int{},
		shared: map[string]int{},
	}

	rs.routines = append(rs.routines, prog.Main)
	procs := make([]*ast.Routine, 0, len(prog.Routines))
	for _, r := range prog.Routines {
		procs = append(procs, r)
	}
	sort.Slice(procs, func(i, j int) bool {
		if procs[i].Token.Line != procs[j].Token.Line {
			return procs[i].Token.Line < procs[j].Token.Line
		}
		return procs[i].Name < procs[j].Name
	})
	rs.routines = append(rs.routines, procs...)

	// pass one, labels and DATA
	prog.Data = nil
	for _, r := range rs.routines {
		rs.collectLabels(r)
	}

	// pass two, everything else
	for _, r := range rs.routines {
		r.Locals = nil
		sc := &scope{r: r, vars: map[string]int{}}
		if r.Kind == ast.MainModule {
			rs.main = sc
		}
		if r.Kind == ast.DefFnRoutine {
			sc.outer = rs.main
		}
		rs.declareParams(sc)
		rs.sequence(sc, r.Body)
	}

	if len(rs.errs) > 0 {
		return rs.errs
	}
	return nil
}

func (rs *resolver) fail(code int, tk token.Token, r *ast.Routine, detail string) {
	name := ""
	if r != nil && r.Kind != ast.MainModule {
		name = r.Name
	}
	rs.errs = append(rs.errs, berrors.NewCompileError(code, tk, name, detail))
}

// Walk calls visit for every statement below seq, depth first in source order
func Walk(seq *ast.Sequence, visit func(st ast.Statement, p ast.Path)) {
	walk(seq, nil, 0, visit)
}

func walk(seq *ast.Sequence, parent ast.Path, seqIdx int, visit func(ast.Statement, ast.Path)) {
	if seq == nil {
		return
	}
	for i, st := range seq.Statements {
		p := parent.Child(seqIdx, i)
		visit(st, p)
		if c, ok := st.(ast.Container); ok {
			for s := 0; s < c.SeqCount(); s++ {
				walk(c.Seq(s), p, s, visit)
			}
		}
	}
}

func (rs *resolver) collectLabels(r *ast.Routine) {
	r.Labels = map[string]ast.Path{}
	r.Lines = ast.NewLineTable()
	marks := map[string]int{}
	rs.marks[r] = marks

	add := func(name string, tk token.Token, p ast.Path) {
		if _, dup := r.Labels[name]; dup {
			rs.fail(berrors.DuplicateLabel, tk, r, name)
			return
		}
		r.Labels[name] = p
		marks[name] = len(rs.prog.Data)
	}

	Walk(r.Body, func(st ast.Statement, p ast.Path) {
		switch st := st.(type) {
		case *ast.LabelStatement:
			add(strings.ToUpper(st.Name), st.Token, p)
		case *ast.LineNumStmt:
			add(strconv.Itoa(int(st.Value)), st.Token, p)
			r.Lines.Add(int(st.Value), p)
		case *ast.DataStatement:
			rs.prog.Data = append(rs.prog.Data, st.Consts...)
		}
	})
}

func varKey(name string, array bool) string {
	if array {
		return strings.ToUpper(name) + "()"
	}
	return strings.ToUpper(name)
}

// specFor works out the type of a name from its AS clause or its suffix
func (rs *resolver) specFor(name, asType string, tk token.Token, r *ast.Routine) (gwtypes.Spec, bool) {
	if len(asType) == 0 {
		k, _ := gwtypes.SuffixKind(name)
		return gwtypes.Scalar(k), false
	}

	up := strings.ToUpper(strings.TrimSpace(asType))
	if strings.HasPrefix(up, "STRING") && strings.Contains(up, "*") {
		n, err := strconv.Atoi(strings.TrimSpace(up[strings.Index(up, "*")+1:]))
		if err != nil || n < 1 || n > 32767 {
			rs.fail(berrors.IllegalFuncCallErr, tk, r, asType)
			return gwtypes.Scalar(gwtypes.String), true
		}
		return gwtypes.Spec{Kind: gwtypes.String, Fixed: n}, true
	}
	if k, ok := gwtypes.KindByName(up); ok {
		return gwtypes.Scalar(k), true
	}
	if rd, ok := rs.prog.Types[up]; ok {
		return gwtypes.Spec{Kind: gwtypes.Record, Record: rd}, true
	}
	rs.fail(berrors.TypeMismatch, tk, r, "unknown type "+asType)
	return gwtypes.Scalar(gwtypes.Single), true
}

// declare finds or allocates the slot for a name.
// explicit declarations must agree with an earlier one.
func (rs *resolver) declare(sc *scope, name string, array bool, spec gwtypes.Spec, explicit bool, tk token.Token) ast.Slot {
	key := varKey(name, array)

	if idx, ok := sc.vars[key]; ok {
		have := sc.r.Locals[idx].Type
		if explicit && !have.Same(spec) {
			rs.fail(berrors.DuplicateDefinition, tk, sc.r, name)
		}
		return ast.Slot{Global: sc.r.Kind == ast.MainModule, Index: idx, Type: have, Array: array}
	}

	if sc.r.Kind != ast.MainModule {
		if idx, ok := rs.shared[key]; ok {
			have := rs.main.r.Locals[idx].Type
			if explicit && !have.Same(spec) {
				rs.fail(berrors.DuplicateDefinition, tk, sc.r, name)
			}
			return ast.Slot{Global: true, Index: idx, Type: have, Array: array}
		}
	}

	if sc.outer != nil {
		slot := rs.declare(sc.outer, name, array, spec, explicit, tk)
		slot.Global = true
		return slot
	}

	sc.r.Locals = append(sc.r.Locals, ast.Local{Name: key, Type: spec, Array: array})
	idx := len(sc.r.Locals) - 1
	sc.vars[key] = idx
	return ast.Slot{Global: sc.r.Kind == ast.MainModule, Index: idx, Type: spec, Array: array}
}

// local allocates a name in the routine's own frame, never globally
func (rs *resolver) local(sc *scope, name string, array bool, spec gwtypes.Spec, tk token.Token) ast.Slot {
	key := varKey(name, array)
	if _, dup := sc.vars[key]; dup {
		rs.fail(berrors.DuplicateDefinition, tk, sc.r, name)
	}
	sc.r.Locals = append(sc.r.Locals, ast.Local{Name: key, Type: spec, Array: array})
	idx := len(sc.r.Locals) - 1
	sc.vars[key] = idx
	return ast.Slot{Global: sc.r.Kind == ast.MainModule, Index: idx, Type: spec, Array: array}
}

func (rs *resolver) declareParams(sc *scope) {
	r := sc.r
	r.Result = -1
	for _, p := range r.Params {
		spec, _ := rs.specFor(p.Name.Name, p.AsType, p.Name.Token, r)
		p.Name.Slot = rs.local(sc, p.Name.Name, p.Array, spec, p.Name.Token)
	}

	if r.Kind == ast.FunctionRoutine || r.Kind == ast.DefFnRoutine {
		spec, _ := rs.specFor(r.Name, r.AsType, r.Token, r)
		slot := rs.local(sc, r.Name, false, spec, r.Token)
		r.Result = slot.Index
		r.ResultType = spec
	}
}

// target resolves a jump label inside routine r
func (rs *resolver) target(r *ast.Routine, label string, tk token.Token, from *ast.Routine) ast.Path {
	if p, ok := r.Label(label); ok {
		return p
	}
	for _, other := range rs.routines {
		if _, ok := other.Label(label); ok {
			rs.fail(berrors.CrossRoutineJump, tk, from, label)
			return nil
		}
	}
	rs.fail(berrors.UnDefinedLineNumber, tk, from, label)
	return nil
}

func (rs *resolver) sequence(sc *scope, seq *ast.Sequence) {
	if seq == nil {
		return
	}
	for _, st := range seq.Statements {
		rs.statement(sc, st)
	}
}

func (rs *resolver) statement(sc *scope, stmt ast.Statement) {
	r := sc.r

	switch st := stmt.(type) {
	case *ast.LetStatement:
		rs.assignable(sc, st.Name)
		st.Value = rs.expr(sc, st.Value)

	case *ast.CallStatement:
		proc, ok := rs.prog.Routine(st.Name)
		if !ok || proc.Kind != ast.SubRoutine {
			rs.fail(berrors.UndefinedSub, st.Token, r, st.Name)
		} else {
			st.Routine = proc
			if len(st.Arguments) != len(proc.Params) {
				rs.fail(berrors.ArgCountMismatch, st.Token, r, st.Name)
			}
		}
		rs.arguments(sc, st.Arguments)

	case *ast.LabelStatement, *ast.LineNumStmt, *ast.DataStatement,
		*ast.ClearCommand, *ast.ClsStatement, *ast.BeepStatement, *ast.StopStatement:

	case *ast.GotoStatement:
		st.Target = rs.target(r, st.Label, st.Token, r)

	case *ast.GosubStatement:
		st.Target = rs.target(r, st.Label, st.Token, r)

	case *ast.ReturnStatement:
		if len(st.Label) > 0 {
			st.Target = rs.target(r, st.Label, st.Token, r)
		}

	case *ast.OnGotoStatement:
		st.Selector = rs.expr(sc, st.Selector)
		st.Targets = make([]ast.Path, len(st.Labels))
		for i, l := range st.Labels {
			st.Targets[i] = rs.target(r, l, st.Token, r)
		}

	case *ast.OnErrorStatement:
		if st.Action != ast.HandlerGoto {
			break
		}
		if st.Local || r.Kind == ast.MainModule {
			st.Target = rs.target(r, st.Label, st.Token, r)
			break
		}
		if !rs.opts.HandlersTargetMain {
			rs.fail(berrors.BadHandlerScope, st.Token, r, st.Label)
			break
		}
		st.Target = rs.target(rs.prog.Main, st.Label, st.Token, r)

	case *ast.ResumeStatement:
		if st.Mode == ast.ResumeLabel {
			st.Target = rs.target(r, st.Label, st.Token, r)
		}

	case *ast.ErrorStatement:
		st.Code = rs.expr(sc, st.Code)

	case *ast.ExitStatement:
		ok := false
		switch st.Kind {
		case ast.ExitDo:
			ok = sc.doDepth > 0
		case ast.ExitFor:
			ok = sc.forDepth > 0
		case ast.ExitSub:
			ok = r.Kind == ast.SubRoutine
		case ast.ExitFunction:
			ok = r.Kind == ast.FunctionRoutine
		case ast.ExitDef:
			ok = r.Kind == ast.DefFnRoutine
		}
		if !ok {
			rs.fail(berrors.ExitOutsideBlock, st.Token, r, st.Kind.String())
		}

	case *ast.EndStatement:
		st.Code = rs.optExpr(sc, st.Code)

	case *ast.DimStatement:
		rs.dim(sc, st)

	case *ast.EraseStatement:
		for _, a := range st.Arrays {
			a.Slot = rs.declare(sc, a.Name, true, rs.implicit(a.Name), false, a.Token)
		}

	case *ast.SwapStatement:
		rs.assignable(sc, st.Left)
		rs.assignable(sc, st.Right)
		if !typeOf(st.Left).Same(typeOf(st.Right)) {
			rs.fail(berrors.TypeMismatch, st.Token, r, st.String())
		}

	case *ast.ReadStatement:
		for _, v := range st.Vars {
			rs.assignable(sc, v)
		}

	case *ast.RestoreStatement:
		st.Index = 0
		if len(st.Label) == 0 {
			break
		}
		key := strings.ToUpper(st.Label)
		if idx, ok := rs.marks[r][key]; ok {
			st.Index = idx
		} else if idx, ok := rs.marks[rs.prog.Main][key]; ok {
			st.Index = idx
		} else {
			rs.fail(berrors.UnDefinedLineNumber, st.Token, r, st.Label)
		}

	case *ast.PrintStatement:
		rs.list(sc, st.Items)

	case *ast.LocateStatement:
		st.Row = rs.optExpr(sc, st.Row)
		st.Col = rs.optExpr(sc, st.Col)

	case *ast.ColorStatement:
		rs.list(sc, st.Parms)

	case *ast.InputStatement:
		for _, v := range st.Vars {
			rs.assignable(sc, v)
		}

	case *ast.LineInputStatement:
		rs.assignable(sc, st.Var)
		if typeOf(st.Var).Kind != gwtypes.String {
			rs.fail(berrors.TypeMismatch, st.Token, r, st.Var.String())
		}

	case *ast.SleepStatement:
		st.Seconds = rs.optExpr(sc, st.Seconds)

	case *ast.RandomizeStatement:
		st.Seed = rs.optExpr(sc, st.Seed)

	case *ast.ScreenStatement:
		st.Mode = rs.expr(sc, st.Mode)

	case *ast.PsetStatement:
		st.X, st.Y = rs.expr(sc, st.X), rs.expr(sc, st.Y)
		st.Color = rs.optExpr(sc, st.Color)

	case *ast.LineStatement:
		st.X1, st.Y1 = rs.expr(sc, st.X1), rs.expr(sc, st.Y1)
		st.X2, st.Y2 = rs.expr(sc, st.X2), rs.expr(sc, st.Y2)
		st.Color = rs.optExpr(sc, st.Color)

	case *ast.CircleStatement:
		st.X, st.Y = rs.expr(sc, st.X), rs.expr(sc, st.Y)
		st.Radius = rs.expr(sc, st.Radius)
		st.Color = rs.optExpr(sc, st.Color)
		st.Start = rs.optExpr(sc, st.Start)
		st.End = rs.optExpr(sc, st.End)
		st.Aspect = rs.optExpr(sc, st.Aspect)

	case *ast.PaintStatement:
		st.X, st.Y = rs.expr(sc, st.X), rs.expr(sc, st.Y)
		st.Fill = rs.optExpr(sc, st.Fill)
		st.Border = rs.optExpr(sc, st.Border)

	case *ast.GetStatement:
		st.X1, st.Y1 = rs.expr(sc, st.X1), rs.expr(sc, st.Y1)
		st.X2, st.Y2 = rs.expr(sc, st.X2), rs.expr(sc, st.Y2)
		st.Array.Slot = rs.declare(sc, st.Array.Name, true, rs.implicit(st.Array.Name), false, st.Array.Token)

	case *ast.PutStatement:
		st.X, st.Y = rs.expr(sc, st.X), rs.expr(sc, st.Y)
		st.Array.Slot = rs.declare(sc, st.Array.Name, true, rs.implicit(st.Array.Name), false, st.Array.Token)

	case *ast.IfStatement:
		rs.list(sc, st.Conditions)
		for _, b := range st.Bodies {
			rs.sequence(sc, b)
		}

	case *ast.DoStatement:
		st.Condition = rs.optExpr(sc, st.Condition)
		sc.doDepth++
		rs.sequence(sc, st.Body)
		sc.doDepth--

	case *ast.ForStatement:
		rs.assignable(sc, st.Counter)
		if k := st.Counter.Slot.Type.Kind; !k.Numeric() {
			rs.fail(berrors.TypeMismatch, st.Token, r, st.Counter.Name)
		}
		st.Start = rs.expr(sc, st.Start)
		st.End = rs.expr(sc, st.End)
		st.Step = rs.optExpr(sc, st.Step)
		sc.forDepth++
		rs.sequence(sc, st.Body)
		sc.forDepth--

	case *ast.SelectStatement:
		st.Subject = rs.expr(sc, st.Subject)
		for _, c := range st.Cases {
			for i := range c.Tests {
				c.Tests[i].Value = rs.optExpr(sc, c.Tests[i].Value)
				c.Tests[i].Upper = rs.optExpr(sc, c.Tests[i].Upper)
			}
		}
		for _, b := range st.Bodies {
			rs.sequence(sc, b)
		}

	default:
		panic(fmt.Sprintf("resolver has no case for %T", stmt))
	}
}

func (rs *resolver) dim(sc *scope, st *ast.DimStatement) {
	for _, dv := range st.Vars {
		for i := range dv.Bounds {
			dv.Bounds[i].Lower = rs.optExpr(sc, dv.Bounds[i].Lower)
			dv.Bounds[i].Upper = rs.expr(sc, dv.Bounds[i].Upper)
		}

		spec, explicit := rs.specFor(dv.Name.Name, dv.AsType, dv.Name.Token, sc.r)
		if spec.Kind == gwtypes.String && dv.Type.Fixed > 0 && spec.Fixed == 0 {
			spec.Fixed = dv.Type.Fixed
		}
		dv.Type = spec
		array := len(dv.Bounds) > 0 || st.Redim

		if st.Shared {
			key := varKey(dv.Name.Name, array)
			slot := rs.declare(rs.main, dv.Name.Name, array, spec, explicit, dv.Name.Token)
			rs.shared[key] = slot.Index
			slot.Global = true
			dv.Name.Slot = slot
			continue
		}
		dv.Name.Slot = rs.declare(sc, dv.Name.Name, array, spec, explicit, dv.Name.Token)
	}
}

func (rs *resolver) implicit(name string) gwtypes.Spec {
	k, _ := gwtypes.SuffixKind(name)
	return gwtypes.Scalar(k)
}

func (rs *resolver) list(sc *scope, exps []ast.Expression) {
	for i := range exps {
		exps[i] = rs.optExpr(sc, exps[i])
	}
}

// arguments resolves CALL arguments, a()  passes a whole array
func (rs *resolver) arguments(sc *scope, args []ast.Expression) {
	for i, a := range args {
		if id, ok := a.(*ast.Identifier); ok && id.Slot.Array {
			id.Slot = rs.declare(sc, id.Name, true, rs.implicit(id.Name), false, id.Token)
			continue
		}
		args[i] = rs.expr(sc, a)
	}
}

func (rs *resolver) optExpr(sc *scope, exp ast.Expression) ast.Expression {
	if exp == nil {
		return nil
	}
	return rs.expr(sc, exp)
}

func (rs *resolver) assignable(sc *scope, a ast.Assignable) {
	switch v := a.(type) {
	case *ast.Identifier:
		v.Slot = rs.declare(sc, v.Name, v.Slot.Array, rs.implicit(v.Name), false, v.Token)
	case *ast.IndexExpression:
		v.Array.Slot = rs.declare(sc, v.Array.Name, true, rs.implicit(v.Array.Name), false, v.Array.Token)
		rs.list(sc, v.Indices)
	case *ast.FieldExpression:
		rs.assignable(sc, v.Base)
		base := typeOf(v.Base)
		if base.Kind != gwtypes.Record || base.Record == nil {
			rs.fail(berrors.TypeMismatch, v.Token, sc.r, v.String())
			return
		}
		idx, ok := base.Record.Field(v.Name)
		if !ok {
			rs.fail(berrors.TypeMismatch, v.Token, sc.r, "no field "+v.Name)
			return
		}
		v.Field = idx
		v.Type = base.Record.Fields[idx].Type
	default:
		panic(fmt.Sprintf("resolver has no case for %T", a))
	}
}

// typeOf is the declared type of a resolved storage reference
func typeOf(a ast.Assignable) gwtypes.Spec {
	switch v := a.(type) {
	case *ast.Identifier:
		return v.Slot.Type
	case *ast.IndexExpression:
		return v.Array.Slot.Type
	case *ast.FieldExpression:
		return v.Type
	}
	return gwtypes.Spec{}
}

func (rs *resolver) expr(sc *scope, exp ast.Expression) ast.Expression {
	switch e := exp.(type) {
	case *ast.IntegerLiteral, *ast.DblIntegerLiteral, *ast.FloatSingleLiteral,
		*ast.FloatDoubleLiteral, *ast.CurrencyLiteral, *ast.StringLiteral:
		return exp

	case *ast.Identifier:
		if call := rs.bareCall(sc, e); call != nil {
			return rs.expr(sc, call)
		}
		rs.assignable(sc, e)

	case *ast.IndexExpression, *ast.FieldExpression:
		rs.assignable(sc, e.(ast.Assignable))

	case *ast.GroupedExpression:
		e.Exp = rs.expr(sc, e.Exp)

	case *ast.PrefixExpression:
		e.Right = rs.expr(sc, e.Right)

	case *ast.InfixExpression:
		e.Left = rs.expr(sc, e.Left)
		e.Right = rs.expr(sc, e.Right)

	case *ast.CallExpression:
		if fn, ok := rs.prog.Routine(e.Name); ok && fn.Kind != ast.SubRoutine {
			e.Routine = fn
			if len(e.Arguments) != len(fn.Params) {
				rs.fail(berrors.ArgCountMismatch, e.Token, sc.r, e.Name)
			}
			rs.arguments(sc, e.Arguments)
			break
		}
		if _, ok := builtins.Lookup(e.Name); !ok {
			rs.fail(berrors.UndefinedFunction, e.Token, sc.r, e.Name)
		}
		rs.arguments(sc, e.Arguments)

	default:
		panic(fmt.Sprintf("resolver has no case for %T", exp))
	}
	return exp
}

// bareCall turns a name with no parens into a call when it isn't a
// variable but is a builtin or a parameterless function
func (rs *resolver) bareCall(sc *scope, id *ast.Identifier) *ast.CallExpression {
	if id.Slot.Array {
		return nil
	}
	key := varKey(id.Name, false)
	if _, ok := sc.vars[key]; ok {
		return nil
	}
	if _, ok := rs.shared[key]; ok {
		return nil
	}
	if fn, ok := rs.prog.Routine(id.Name); ok && fn.Kind != ast.SubRoutine && len(fn.Params) == 0 && fn != sc.r {
		return &ast.CallExpression{Token: id.Token, Name: id.Name}
	}
	if _, ok := builtins.Lookup(id.Name); ok {
		return &ast.CallExpression{Token: id.Token, Name: id.Name}
	}
	return nil
}
