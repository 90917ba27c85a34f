package evaluator

import (
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/object"
)

// arrays used before any DIM get this upper bound in every dimension
const autoDimUpper = 10

// most elements a single array may hold
const maxElements = 1 << 24

// location is a resolved piece of storage: a variable, an array
// element or a record field
type location struct {
	spec  gwtypes.Spec
	cell  *object.Variable
	arr   *object.Array
	index int
	rec   *object.Record
	field int
}

func (l *location) load() object.Object {
	switch {
	case l.arr != nil:
		return l.arr.Elements[l.index]
	case l.rec != nil:
		return l.rec.Fields[l.field]
	}
	return l.cell.Value
}

// put converts val to the location's type and stores it
func (l *location) put(val object.Object) *object.Error {
	conv := object.Convert(val, l.spec)
	if isError(conv) {
		return conv.(*object.Error)
	}
	switch {
	case l.arr != nil:
		l.arr.Elements[l.index] = conv
	case l.rec != nil:
		l.rec.Fields[l.field] = conv
	default:
		l.cell.Value = conv
	}
	return nil
}

// locate finds the storage an assignable names
func (ev *evaluator) locate(a ast.Assignable) (*location, *object.Error) {
	switch v := a.(type) {
	case *ast.Identifier:
		return &location{spec: v.Slot.Type, cell: ev.env.Variable(v.Slot)}, nil

	case *ast.IndexExpression:
		subs := make([]int, len(v.Indices))
		for i, exp := range v.Indices {
			n, err := ev.intArg(exp)
			if err != nil {
				return nil, err
			}
			subs[i] = n
		}
		arr := ev.array(v.Array.Slot, len(subs))
		off, ok := arr.Offset(subs)
		if !ok {
			return nil, stdError(berrors.SubscriptRange, v)
		}
		return &location{spec: arr.Elem, arr: arr, index: off}, nil

	case *ast.FieldExpression:
		base, err := ev.locate(v.Base)
		if err != nil {
			return nil, err
		}
		rec, ok := base.load().(*object.Record)
		if !ok {
			panic("field of a value that is not a record: " + v.String())
		}
		return &location{spec: v.Type, rec: rec, field: v.Field}, nil
	}
	panic("cannot locate " + a.String())
}

// array returns the array in slot, dimensioning it 0 to 10 when
// it has never been dimensioned
func (ev *evaluator) array(slot ast.Slot, dims int) *object.Array {
	cell := ev.env.Variable(slot)
	if arr, ok := cell.Value.(*object.Array); ok {
		return arr
	}
	bounds := make([]object.Dim, dims)
	for i := range bounds {
		bounds[i] = object.Dim{Lower: 0, Upper: autoDimUpper}
	}
	arr := object.NewArray(slot.Type, bounds)
	cell.Value = arr
	return arr
}

// store assigns val to an assignable, faulting on a failed conversion
func (ev *evaluator) store(a ast.Assignable, val object.Object) *Signal {
	loc, err := ev.locate(a)
	if err != nil {
		return ev.fail(err)
	}
	if err := loc.put(val); err != nil {
		return ev.raise(blame(err, a))
	}
	return nil
}

func (ev *evaluator) execDim(st *ast.DimStatement) *Signal {
	for _, dv := range st.Vars {
		if len(dv.Bounds) == 0 {
			continue
		}

		dims := make([]object.Dim, len(dv.Bounds))
		size := 1
		for i, b := range dv.Bounds {
			lower, err := ev.optInt(b.Lower, 0)
			if err != nil {
				return ev.fail(err)
			}
			upper, err := ev.intArg(b.Upper)
			if err != nil {
				return ev.fail(err)
			}
			if lower > upper {
				return ev.raise(stdError(berrors.SubscriptRange, dv.Name))
			}
			dims[i] = object.Dim{Lower: lower, Upper: upper}
			size *= dims[i].Len()
			if size > maxElements {
				return ev.raise(stdError(berrors.OutOfMemory, dv.Name))
			}
		}

		cell := ev.env.Variable(dv.Name.Slot)
		if cell.Value != nil && !st.Redim {
			return ev.raise(stdError(berrors.DuplicateDefinition, dv.Name))
		}
		cell.Value = object.NewArray(dv.Name.Slot.Type, dims)
	}
	return nil
}

func (ev *evaluator) execSwap(st *ast.SwapStatement) *Signal {
	left, err := ev.locate(st.Left)
	if err != nil {
		return ev.fail(err)
	}
	right, err := ev.locate(st.Right)
	if err != nil {
		return ev.fail(err)
	}

	lv, rv := left.load(), right.load()
	if err := left.put(rv); err != nil {
		return ev.raise(blame(err, st.Left))
	}
	if err := right.put(lv); err != nil {
		return ev.raise(blame(err, st.Right))
	}
	return nil
}

// execRead copies DATA constants into variables, a string constant
// can't go into a numeric variable
func (ev *evaluator) execRead(st *ast.ReadStatement) *Signal {
	for _, v := range st.Vars {
		exp, ok := ev.env.ReadData()
		if !ok {
			return ev.raise(object.StdError(berrors.OutOfData).Blame(st.Token))
		}

		val := ev.eval(exp)
		if isError(val) {
			return ev.fail(val)
		}

		loc, err := ev.locate(v)
		if err != nil {
			return ev.fail(err)
		}

		_, str := val.(*object.String)
		switch {
		case loc.spec.Kind == gwtypes.String && !str:
			val = &object.String{Value: strings.TrimSpace(string(object.AppendNumber(ev.env.Scratch(), val)))}
		case loc.spec.Kind != gwtypes.String && str:
			return ev.raise(stdError(berrors.Syntax, exp))
		}

		if err := loc.put(val); err != nil {
			return ev.raise(blame(err, v))
		}
	}
	return nil
}
