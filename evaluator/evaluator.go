package evaluator

import (
	"fmt"
	"math"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/object"
)

// deepest call stack before a call faults, GOSUB return points are
// not limited
const maxDepth = 2048

// halted comes back from expression evaluation when a routine called
// by the expression produced a signal, the signal itself is pending
var halted = object.Sentinel("halted")

type evaluator struct {
	env     *object.Environment
	pending *Signal
}

// Run executes the main module of a resolved program.
// The main module frame stays on the environment afterwards so the
// host can look at the variables.
func Run(prog *ast.Program, env *object.Environment) (int, error) {
	if !prog.Main.Resolved() {
		panic("Run on a program that was never resolved")
	}
	if env.Depth() != 0 {
		panic("Run on an environment that is already running")
	}

	ev := &evaluator{env: env}
	env.Log.Debug().Int("procedures", len(prog.Routines)).Int("data", len(prog.Data)).Msg("run started")

	sig := ev.runBody(env.PushFrame(prog.Main), nil)

	code := 0
	var err error
	if sig != nil {
		switch sig.Kind {
		case SigEnd:
			code = sig.Code
			if sig.Stop {
				env.Log.Debug().Stringer("path", env.CurrentPath()).Msg("stopped")
			}
		case SigFault:
			re := runtimeError(sig)
			env.Log.Error().Int("code", re.Code).Str("routine", re.Routine).Int("line", re.Line).Msg(re.Message)
			code, err = 1, re
		default:
			panic("signal escaped the main module: " + sig.String())
		}
	}

	env.ExitCode = code
	env.Log.Debug().Int("exit", code).Msg("run ended")
	if env.OnEnd != nil {
		env.OnEnd(code)
	}
	return code, err
}

func runtimeError(sig *Signal) *berrors.RuntimeError {
	return &berrors.RuntimeError{
		Code:    sig.Err.Code,
		Kind:    berrors.KindOf(sig.Err.Code),
		Message: sig.Err.Message,
		Token:   sig.Err.Token,
		Routine: sig.Routine,
		Line:    sig.Line,
	}
}

// Eval evaluates one expression in the innermost frame of env
func Eval(node ast.Expression, env *object.Environment) object.Object {
	ev := &evaluator{env: env}
	return ev.eval(node)
}

// runBody executes the root sequence of the routine owning frame f.
// Every goto inside the routine, and every fault whose handler
// belongs to f, ends up here when no inner dispatcher took it.
func (ev *evaluator) runBody(f *object.Frame, from ast.Path) *Signal {
	depth := ev.env.Depth() - 1
	for {
		sig := ev.runSeq(f, f.Routine.Body, nil, 0, from)
		if sig == nil {
			if !f.Handling {
				return nil
			}
			sig = ev.fatal(object.StdError(berrors.NoResume))
		}

		switch {
		case sig.Kind == SigGoto:
			from = sig.Target
			continue
		case sig.Kind == SigFault && !sig.Fatal && sig.Depth == depth:
			ev.enterHandler(f, sig)
			from = sig.Target
			continue
		}
		return sig
	}
}

// runSeq runs seq starting at the statement from points at, nil means
// the top. prefix is the path of the container owning seq and idx
// says which of its sequences seq is.
func (ev *evaluator) runSeq(f *object.Frame, seq *ast.Sequence, prefix ast.Path, idx int, from ast.Path) *Signal {
	k := len(prefix)
	i := 0
	if from != nil {
		i = from[k].Stmt
	}

	for i < seq.Len() {
		st := seq.Statements[i]
		cursor := prefix.Child(idx, i)
		f.Cursor = cursor

		var sig *Signal
		if from != nil && len(from) > k+1 {
			sig = ev.exec(f, st, cursor, from)
		} else {
			sig = ev.step(f, st, cursor)
		}
		from = nil

		if sig == nil {
			i++
			continue
		}
		if sig.catches(prefix, idx) {
			from = sig.Target
			i = from[k].Stmt
			continue
		}
		return sig
	}
	return nil
}

// step runs one statement from its beginning
func (ev *evaluator) step(f *object.Frame, st ast.Statement, cursor ast.Path) *Signal {
	env := ev.env
	if env.Stepper != nil && env.Stepper(f.Routine, cursor, st) {
		return &Signal{Kind: SigEnd, Stop: true}
	}
	if t := env.Terminal(); t != nil && t.BreakCheck() {
		return &Signal{Kind: SigEnd, Stop: true}
	}
	if e := env.Log.Trace(); e.Enabled() {
		e.Str("routine", f.Routine.Name).Stringer("path", cursor).Str("stmt", st.TokenLiteral()).Msg("exec")
	}
	return ev.exec(f, st, cursor, nil)
}

// exec performs a statement. from is non nil when a jump lands
// inside the container st, it is the full path of the landing spot.
func (ev *evaluator) exec(f *object.Frame, node ast.Statement, cursor, from ast.Path) *Signal {
	switch st := node.(type) {
	case *ast.LetStatement:
		val := ev.eval(st.Value)
		if isError(val) {
			return ev.fail(val)
		}
		return ev.store(st.Name, val)

	case *ast.CallStatement:
		_, sig := ev.callRoutine(st.Routine, st.Arguments)
		return sig

	case *ast.LabelStatement, *ast.DataStatement:
		return nil

	case *ast.LineNumStmt:
		f.Line = int(st.Value)
		return nil

	case *ast.GotoStatement:
		return gotoSignal(st.Target)

	case *ast.GosubStatement:
		return ev.gosub(f, st.Target, cursor)

	case *ast.ReturnStatement:
		ret, ok := f.PopGosub()
		if !ok {
			return ev.raise(object.StdError(berrors.ReturnWoGosub).Blame(st.Token))
		}
		if st.Target != nil {
			return gotoSignal(st.Target)
		}
		return gotoSignal(ret)

	case *ast.OnGotoStatement:
		return ev.execOnGoto(f, st, cursor)

	case *ast.OnErrorStatement:
		return ev.execOnError(f, st)

	case *ast.ResumeStatement:
		return ev.execResume(f, st)

	case *ast.ErrorStatement:
		return ev.execError(st)

	case *ast.ExitStatement:
		return &Signal{Kind: SigExit, Exit: st.Kind}

	case *ast.EndStatement:
		code := 0
		if st.Code != nil {
			n, err := ev.intArg(st.Code)
			if err != nil {
				return ev.fail(err)
			}
			code = n
		}
		return &Signal{Kind: SigEnd, Code: code}

	case *ast.StopStatement:
		return &Signal{Kind: SigEnd, Stop: true}

	case *ast.DimStatement:
		return ev.execDim(st)

	case *ast.EraseStatement:
		for _, a := range st.Arrays {
			ev.env.Variable(a.Slot).Value = nil
		}
		return nil

	case *ast.ClearCommand:
		if f != ev.env.MainFrame() {
			return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
		}
		ev.env.Clear()
		return nil

	case *ast.SwapStatement:
		return ev.execSwap(st)

	case *ast.ReadStatement:
		return ev.execRead(st)

	case *ast.RestoreStatement:
		ev.env.Restore(st.Index)
		return nil

	case *ast.PrintStatement:
		return ev.execPrint(st)

	case *ast.LocateStatement:
		return ev.execLocate(st)

	case *ast.ClsStatement:
		ev.env.Terminal().Cls()
		return nil

	case *ast.ColorStatement:
		return ev.execColor(st)

	case *ast.BeepStatement:
		ev.env.Terminal().SoundBell()
		return nil

	case *ast.InputStatement:
		return ev.execInput(st)

	case *ast.LineInputStatement:
		return ev.execLineInput(st)

	case *ast.SleepStatement:
		return ev.execSleep(st)

	case *ast.RandomizeStatement:
		return ev.execRandomize(st)

	case *ast.ScreenStatement:
		return ev.execScreen(st)

	case *ast.PsetStatement:
		return ev.execPset(st)

	case *ast.LineStatement:
		return ev.execLine(st)

	case *ast.CircleStatement:
		return ev.execCircle(st)

	case *ast.PaintStatement:
		return ev.execPaint(st)

	case *ast.GetStatement:
		return ev.execGet(st)

	case *ast.PutStatement:
		return ev.execPut(st)

	case *ast.IfStatement:
		return ev.execIf(f, st, cursor, from)

	case *ast.DoStatement:
		return ev.execDo(f, st, cursor, from)

	case *ast.ForStatement:
		return ev.execFor(f, st, cursor, from)

	case *ast.SelectStatement:
		return ev.execSelect(f, st, cursor, from)
	}

	panic(fmt.Sprintf("no dispatch for %T", node))
}

func (ev *evaluator) gosub(f *object.Frame, target, cursor ast.Path) *Signal {
	f.PushGosub(cursor.Next())
	return gotoSignal(target)
}

// execOnGoto picks target n, zero or past the end falls through
func (ev *evaluator) execOnGoto(f *object.Frame, st *ast.OnGotoStatement, cursor ast.Path) *Signal {
	n, err := ev.intArg(st.Selector)
	if err != nil {
		return ev.fail(err)
	}
	if n < 0 || n > 255 {
		return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
	}
	if n == 0 || n > len(st.Targets) {
		return nil
	}
	if st.Gosub {
		return ev.gosub(f, st.Targets[n-1], cursor)
	}
	return gotoSignal(st.Targets[n-1])
}

// intArg evaluates an expression that must produce a whole number
func (ev *evaluator) intArg(exp ast.Expression) (int, *object.Error) {
	val := ev.eval(exp)
	if isError(val) {
		return 0, val.(*object.Error)
	}
	return intValue(val, exp)
}

// intValue rounds a numeric value to an int, Long range
func intValue(val object.Object, exp ast.Node) (int, *object.Error) {
	i, ok := object.ToInt64(val)
	if _, num := object.ToFloat64(val); !num {
		return 0, blame(object.StdError(berrors.TypeMismatch), exp)
	}
	if !ok || i < math.MinInt32 || i > math.MaxInt32 {
		return 0, blame(object.StdError(berrors.Overflow), exp)
	}
	return int(i), nil
}

// optInt is intArg for optional arguments, def when missing
func (ev *evaluator) optInt(exp ast.Expression, def int) (int, *object.Error) {
	if exp == nil {
		return def, nil
	}
	return ev.intArg(exp)
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

func stdError(code int, node ast.Node) *object.Error {
	return blame(object.StdError(code), node)
}

// blame attaches the token of node to err
func blame(err *object.Error, node ast.Node) *object.Error {
	if node == nil {
		return err
	}
	return err.Blame(tokenOf(node))
}
