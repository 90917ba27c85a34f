package evaluator

import (
	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/object"
)

// copyBack is an argument passed by copy that goes back to its storage
type copyBack struct {
	loc   *location
	param int
}

// callRoutine invokes a SUB, FUNCTION or DEF FN. Arguments are
// evaluated in the caller's frame. Variables and whole arrays are
// shared with the callee, array elements and record fields are copied
// in and stored back when the routine returns normally.
func (ev *evaluator) callRoutine(r *ast.Routine, args []ast.Expression) (object.Object, *Signal) {
	env := ev.env
	if env.Depth() >= maxDepth {
		return nil, ev.raise(object.StdError(berrors.OutOfMemory))
	}

	cells := make([]*object.Variable, len(r.Params))
	var backs []copyBack

	for i, p := range r.Params {
		spec := r.Locals[i].Type
		arg := args[i]

		if id, ok := arg.(*ast.Identifier); ok {
			if p.Array != id.Slot.Array || !id.Slot.Type.Same(spec) {
				return nil, ev.raise(stdError(berrors.TypeMismatch, id))
			}
			cells[i] = env.Variable(id.Slot)
			continue
		}
		if p.Array {
			return nil, ev.raise(stdError(berrors.TypeMismatch, arg))
		}

		var val object.Object
		switch a := arg.(type) {
		case *ast.IndexExpression, *ast.FieldExpression:
			loc, err := ev.locate(a.(ast.Assignable))
			if err != nil {
				return nil, ev.fail(err)
			}
			val = loc.load()
			backs = append(backs, copyBack{loc: loc, param: i})
		default:
			val = ev.eval(arg)
			if isError(val) {
				return nil, ev.fail(val)
			}
		}

		conv := object.Convert(val, spec)
		if isError(conv) {
			return nil, ev.raise(blame(conv.(*object.Error), arg))
		}
		cells[i] = &object.Variable{Value: conv, Type: spec}
	}

	f := env.PushFrame(r)
	copy(f.Vars, cells)
	env.Log.Trace().Str("routine", r.Name).Int("depth", env.Depth()).Msg("enter")

	sig := ev.runBody(f, nil)
	var result object.Object
	if r.Result >= 0 {
		result = f.Vars[r.Result].Value
	}
	env.PopFrame()

	if sig != nil && sig.Kind != SigExit {
		return nil, sig
	}

	for _, cb := range backs {
		if err := cb.loc.put(cells[cb.param].Value); err != nil {
			return nil, ev.raise(err)
		}
	}
	return result, nil
}
