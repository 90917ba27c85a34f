package evaluator

import (
	"math"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/object"
	"github.com/shopspring/decimal"
)

// truth is the condition value of IF, DO and friends, any non zero number
func truth(val object.Object, exp ast.Expression) (bool, *object.Error) {
	if s, ok := val.(*object.Currency); ok {
		return !s.Value.IsZero(), nil
	}
	f, ok := object.ToFloat64(val)
	if !ok {
		return false, stdError(berrors.TypeMismatch, exp)
	}
	return f != 0, nil
}

// condition evaluates exp as a truth value
func (ev *evaluator) condition(exp ast.Expression) (bool, *Signal) {
	val := ev.eval(exp)
	if isError(val) {
		return false, ev.fail(val)
	}
	t, err := truth(val, exp)
	if err != nil {
		return false, ev.raise(err)
	}
	return t, nil
}

// armEntry runs arm from a jump that landed inside it
func (ev *evaluator) armEntry(f *object.Frame, arms []*ast.Sequence, cursor, from ast.Path) *Signal {
	arm := from[len(cursor)].Seq
	return ev.runSeq(f, arms[arm], cursor, arm, from)
}

func (ev *evaluator) execIf(f *object.Frame, st *ast.IfStatement, cursor, from ast.Path) *Signal {
	if from != nil {
		return ev.armEntry(f, st.Bodies, cursor, from)
	}

	for i, cond := range st.Conditions {
		t, sig := ev.condition(cond)
		if sig != nil {
			return sig
		}
		if t {
			return ev.runSeq(f, st.Bodies[i], cursor, i, nil)
		}
	}

	if st.HasElse() {
		n := len(st.Conditions)
		return ev.runSeq(f, st.Bodies[n], cursor, n, nil)
	}
	return nil
}

// afterBody is where a loop's own test or step runs. A fault there
// is resumed from this spot, so only the test or step is retried.
func afterBody(cursor ast.Path, body *ast.Sequence) ast.Path {
	return cursor.Child(0, body.Len())
}

// pastLoop reports a landing spot beyond afterBody, which is where
// RESUME NEXT goes after the test or step faulted
func pastLoop(cursor, from ast.Path, body *ast.Sequence) bool {
	return from != nil && from[len(cursor)].Stmt > body.Len()
}

// loopTest says if a DO loop goes around again
func (ev *evaluator) loopTest(f *object.Frame, st *ast.DoStatement, cursor ast.Path) (bool, *Signal) {
	f.Cursor = afterBody(cursor, st.Body)
	t, sig := ev.condition(st.Condition)
	if st.Until {
		t = !t
	}
	return t, sig
}

func (ev *evaluator) execDo(f *object.Frame, st *ast.DoStatement, cursor, from ast.Path) *Signal {
	if pastLoop(cursor, from, st.Body) {
		return nil
	}
	entry := from
	for {
		if entry == nil && st.TestFirst && st.Condition != nil {
			again, sig := ev.loopTest(f, st, cursor)
			if sig != nil || !again {
				return sig
			}
		}

		sig := ev.runSeq(f, st.Body, cursor, 0, entry)
		entry = nil
		if sig != nil {
			if sig.Kind == SigExit && sig.Exit == ast.ExitDo {
				return nil
			}
			return sig
		}

		switch {
		case st.Condition == nil:
			ev.env.Yield()
		case !st.TestFirst:
			again, sig := ev.loopTest(f, st, cursor)
			if sig != nil || !again {
				return sig
			}
		}
	}
}

func (ev *evaluator) execSelect(f *object.Frame, st *ast.SelectStatement, cursor, from ast.Path) *Signal {
	if from != nil {
		return ev.armEntry(f, st.Bodies, cursor, from)
	}

	subject := ev.eval(st.Subject)
	if isError(subject) {
		return ev.fail(subject)
	}

	for i, c := range st.Cases {
		match, sig := ev.caseMatches(subject, c)
		if sig != nil {
			return sig
		}
		if match {
			return ev.runSeq(f, st.Bodies[i], cursor, i, nil)
		}
	}
	return nil
}

// caseMatches tries each test of a CASE clause, any one matching is enough
func (ev *evaluator) caseMatches(subject object.Object, c *ast.CaseClause) (bool, *Signal) {
	if c.Else {
		return true, nil
	}
	for _, t := range c.Tests {
		val := ev.eval(t.Value)
		if isError(val) {
			return false, ev.fail(val)
		}
		cmp, err := compareValues(subject, val)
		if err != nil {
			return false, ev.raise(blame(err, t.Value))
		}

		if t.Op != "TO" {
			if relation(t.Op, cmp) {
				return true, nil
			}
			continue
		}

		upper := ev.eval(t.Upper)
		if isError(upper) {
			return false, ev.fail(upper)
		}
		hi, err := compareValues(subject, upper)
		if err != nil {
			return false, ev.raise(blame(err, t.Upper))
		}
		if cmp >= 0 && hi <= 0 {
			return true, nil
		}
	}
	return false, nil
}

// stepper is the arithmetic a FOR loop needs for one counter kind
type stepper[T any] interface {
	kind() gwtypes.Kind
	unbox(obj object.Object) T
	box(v T) object.Object
	add(a, b T) (T, bool) // false on overflow
	cmp(a, b T) int
}

type forState[T any] struct {
	end  T
	step T
}

type int16Step struct{}

func (int16Step) kind() gwtypes.Kind { return gwtypes.Integer }
func (int16Step) unbox(obj object.Object) int16 { return obj.(*object.Integer).Value }
func (int16Step) box(v int16) object.Object { return &object.Integer{Value: v} }
func (int16Step) cmp(a, b int16) int { return compareOrdered(a, b) }
func (int16Step) add(a, b int16) (int16, bool) {
	r := int32(a) + int32(b)
	return int16(r), r >= math.MinInt16 && r <= math.MaxInt16
}

type int32Step struct{}

func (int32Step) kind() gwtypes.Kind { return gwtypes.Long }
func (int32Step) unbox(obj object.Object) int32 { return obj.(*object.IntDbl).Value }
func (int32Step) box(v int32) object.Object { return &object.IntDbl{Value: v} }
func (int32Step) cmp(a, b int32) int { return compareOrdered(a, b) }
func (int32Step) add(a, b int32) (int32, bool) {
	r := int64(a) + int64(b)
	return int32(r), r >= math.MinInt32 && r <= math.MaxInt32
}

type float32Step struct{}

func (float32Step) kind() gwtypes.Kind { return gwtypes.Single }
func (float32Step) unbox(obj object.Object) float32 { return obj.(*object.FloatSgl).Value }
func (float32Step) box(v float32) object.Object { return &object.FloatSgl{Value: v} }
func (float32Step) cmp(a, b float32) int { return compareOrdered(a, b) }
func (float32Step) add(a, b float32) (float32, bool) { return a + b, true }

type float64Step struct{}

func (float64Step) kind() gwtypes.Kind { return gwtypes.Double }
func (float64Step) unbox(obj object.Object) float64 { return obj.(*object.FloatDbl).Value }
func (float64Step) box(v float64) object.Object { return &object.FloatDbl{Value: v} }
func (float64Step) cmp(a, b float64) int { return compareOrdered(a, b) }
func (float64Step) add(a, b float64) (float64, bool) { return a + b, true }

type currencyStep struct{}

func (currencyStep) kind() gwtypes.Kind { return gwtypes.Currency }
func (currencyStep) unbox(obj object.Object) decimal.Decimal { return obj.(*object.Currency).Value }
func (currencyStep) box(v decimal.Decimal) object.Object { return &object.Currency{Value: v} }
func (currencyStep) cmp(a, b decimal.Decimal) int { return a.Cmp(b) }
func (currencyStep) add(a, b decimal.Decimal) (decimal.Decimal, bool) {
	return object.CheckCurrency(a.Add(b))
}

func (ev *evaluator) execFor(f *object.Frame, st *ast.ForStatement, cursor, from ast.Path) *Signal {
	switch st.Kind() {
	case gwtypes.Integer:
		return runFor[int16, int16Step](ev, f, st, cursor, from, int16Step{})
	case gwtypes.Long:
		return runFor[int32, int32Step](ev, f, st, cursor, from, int32Step{})
	case gwtypes.Single:
		return runFor[float32, float32Step](ev, f, st, cursor, from, float32Step{})
	case gwtypes.Double:
		return runFor[float64, float64Step](ev, f, st, cursor, from, float64Step{})
	case gwtypes.Currency:
		return runFor[decimal.Decimal, currencyStep](ev, f, st, cursor, from, currencyStep{})
	}
	panic("FOR counter of kind " + st.Kind().String())
}

// forBound converts a FOR bound to the counter kind. out is set when a
// floating point bound is outside an integer counter's range, the loop
// then runs zero times instead of faulting.
func forBound[T any, S stepper[T]](ev *evaluator, s S, exp ast.Expression) (T, bool, *Signal) {
	var v T
	val := ev.eval(exp)
	if isError(val) {
		return v, false, ev.fail(val)
	}

	k := s.kind()
	if k == gwtypes.Integer || k == gwtypes.Long {
		switch val.(type) {
		case *object.FloatSgl, *object.FloatDbl:
			lim := float64(math.MaxInt16)
			if k == gwtypes.Long {
				lim = math.MaxInt32
			}
			fv, _ := object.ToFloat64(val)
			r := math.RoundToEven(fv)
			if math.IsNaN(r) || r < -lim-1 || r > lim {
				return v, true, nil
			}
		}
	}

	conv := object.Convert(val, gwtypes.Scalar(k))
	if isError(conv) {
		return v, false, ev.raise(blame(conv.(*object.Error), exp))
	}
	return s.unbox(conv), false, nil
}

// runFor is FOR ... NEXT for one counter kind. When a jump lands in
// the body the loop carries on with the limit and step it had, or
// evaluates them without touching the counter if it never started.
func runFor[T any, S stepper[T]](ev *evaluator, f *object.Frame, st *ast.ForStatement, cursor, from ast.Path, s S) *Signal {
	cell := ev.env.Variable(st.Counter.Slot)
	if pastLoop(cursor, from, st.Body) {
		delete(f.Loops, st)
		return nil
	}
	state, cached := f.Loops[st].(*forState[T])

	if from == nil || !cached {
		var start T
		if from == nil {
			v, out, sig := forBound[T](ev, s, st.Start)
			if sig != nil || out {
				return sig
			}
			start = v
		}
		end, out, sig := forBound[T](ev, s, st.End)
		if sig != nil || out {
			return sig
		}
		step := s.unbox(object.Convert(&object.Integer{Value: 1}, gwtypes.Scalar(s.kind())))
		if st.Step != nil {
			step, out, sig = forBound[T](ev, s, st.Step)
			if sig != nil || out {
				return sig
			}
		}
		state = &forState[T]{end: end, step: step}
		f.Loops[st] = state
		if from == nil {
			cell.Value = s.box(start)
		}
	}

	zero := s.unbox(object.Convert(&object.Integer{}, gwtypes.Scalar(s.kind())))
	down := s.cmp(state.step, zero) < 0

	entry := from
	for {
		if entry == nil {
			c := s.cmp(s.unbox(cell.Value), state.end)
			if (down && c < 0) || (!down && c > 0) {
				delete(f.Loops, st)
				return nil
			}
		}

		sig := ev.runSeq(f, st.Body, cursor, 0, entry)
		entry = nil
		if sig != nil {
			if sig.Kind == SigExit && sig.Exit == ast.ExitFor {
				delete(f.Loops, st)
				return nil
			}
			return sig
		}

		f.Cursor = afterBody(cursor, st.Body)
		next, ok := s.add(s.unbox(cell.Value), state.step)
		if !ok {
			return ev.raise(stdError(berrors.Overflow, st.Counter))
		}
		cell.Value = s.box(next)
	}
}
