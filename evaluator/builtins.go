package evaluator

import (
	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/builtins"
	"github.com/navionguy/qbasic/object"
)

// evalBuiltin calls an intrinsic function, a whole array argument
// such as LBOUND(a) is passed as the array itself
func (ev *evaluator) evalBuiltin(node *ast.CallExpression) object.Object {
	fn, ok := builtins.Lookup(node.Name)
	if !ok {
		panic("unresolved function " + node.Name)
	}

	args := make([]object.Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val := ev.eval(a)
		if isError(val) {
			return val
		}
		args = append(args, val)
	}

	res := fn.Fn(ev.env, fn, args...)
	if err, ok := res.(*object.Error); ok {
		return err.Blame(node.Token)
	}
	return res
}
