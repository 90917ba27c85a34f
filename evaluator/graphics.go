package evaluator

import (
	"math"
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/token"
)

func (ev *evaluator) execScreen(st *ast.ScreenStatement) *Signal {
	mode, err := ev.intArg(st.Mode)
	if err != nil {
		return ev.fail(err)
	}

	d := ev.env.Display()
	if d == nil {
		if mode != 0 {
			return ev.raise(stdError(berrors.IllegalFuncCallErr, st.Mode))
		}
		return nil
	}
	if !d.Screen(mode) {
		return ev.raise(stdError(berrors.IllegalFuncCallErr, st.Mode))
	}
	ev.env.Log.Debug().Int("mode", mode).Msg("screen")
	return nil
}

// graphics returns the display, drawing needs a graphics mode
func (ev *evaluator) graphics(tk token.Token) (object.Display, *Signal) {
	d := ev.env.Display()
	if d == nil || d.Mode() == 0 {
		return nil, ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(tk))
	}
	return d, nil
}

// ints evaluates a list of whole number arguments
func (ev *evaluator) ints(exps ...ast.Expression) ([]int, *Signal) {
	res := make([]int, len(exps))
	for i, exp := range exps {
		n, err := ev.intArg(exp)
		if err != nil {
			return nil, ev.fail(err)
		}
		res[i] = n
	}
	return res, nil
}

// color evaluates an optional color argument
func (ev *evaluator) color(exp ast.Expression) (int, *Signal) {
	c, err := ev.optInt(exp, object.ColorDefault)
	if err != nil {
		return 0, ev.fail(err)
	}
	return c, nil
}

func (ev *evaluator) floatArg(exp ast.Expression, def float64) (float64, *Signal) {
	if exp == nil {
		return def, nil
	}
	val := ev.eval(exp)
	if isError(val) {
		return 0, ev.fail(val)
	}
	f, ok := object.ToFloat64(val)
	if !ok {
		return 0, ev.raise(stdError(berrors.TypeMismatch, exp))
	}
	return f, nil
}

func (ev *evaluator) execPset(st *ast.PsetStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	xy, sig := ev.ints(st.X, st.Y)
	if sig != nil {
		return sig
	}
	c, sig := ev.color(st.Color)
	if sig != nil {
		return sig
	}
	d.Pset(xy[0], xy[1], c)
	return nil
}

func (ev *evaluator) execLine(st *ast.LineStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	pts, sig := ev.ints(st.X1, st.Y1, st.X2, st.Y2)
	if sig != nil {
		return sig
	}
	c, sig := ev.color(st.Color)
	if sig != nil {
		return sig
	}
	d.Line(pts[0], pts[1], pts[2], pts[3], c, st.Box || st.Fill, st.Fill)
	return nil
}

func (ev *evaluator) execCircle(st *ast.CircleStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	xyr, sig := ev.ints(st.X, st.Y, st.Radius)
	if sig != nil {
		return sig
	}
	c, sig := ev.color(st.Color)
	if sig != nil {
		return sig
	}

	arc := []float64{0, 2 * math.Pi, 1}
	for i, exp := range []ast.Expression{st.Start, st.End, st.Aspect} {
		if arc[i], sig = ev.floatArg(exp, arc[i]); sig != nil {
			return sig
		}
	}
	if xyr[2] < 0 || arc[2] <= 0 {
		return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
	}

	d.Circle(xyr[0], xyr[1], xyr[2], c, arc[0], arc[1], arc[2])
	return nil
}

func (ev *evaluator) execPaint(st *ast.PaintStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	xy, sig := ev.ints(st.X, st.Y)
	if sig != nil {
		return sig
	}
	fill, sig := ev.color(st.Fill)
	if sig != nil {
		return sig
	}
	border, sig := ev.color(st.Border)
	if sig != nil {
		return sig
	}
	d.Paint(xy[0], xy[1], fill, border)
	return nil
}

// execGet saves a screen rectangle into a numeric array
func (ev *evaluator) execGet(st *ast.GetStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	pts, sig := ev.ints(st.X1, st.Y1, st.X2, st.Y2)
	if sig != nil {
		return sig
	}

	img := d.GetImage(pts[0], pts[1], pts[2], pts[3])
	arr := ev.array(st.Array.Slot, 1)
	if len(img) > len(arr.Elements) {
		return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
	}
	for i, w := range img {
		val := object.Convert(&object.Integer{Value: w}, arr.Elem)
		if isError(val) {
			return ev.raise(blame(val.(*object.Error), st.Array))
		}
		arr.Elements[i] = val
	}
	return nil
}

// execPut draws an image saved by GET
func (ev *evaluator) execPut(st *ast.PutStatement) *Signal {
	d, sig := ev.graphics(st.Token)
	if sig != nil {
		return sig
	}
	xy, sig := ev.ints(st.X, st.Y)
	if sig != nil {
		return sig
	}

	arr := ev.array(st.Array.Slot, 1)
	img := make([]int16, len(arr.Elements))
	for i, el := range arr.Elements {
		w, ok := object.ToInt64(el)
		if !ok {
			return ev.raise(stdError(berrors.TypeMismatch, st.Array))
		}
		img[i] = int16(w)
	}

	action := strings.ToUpper(st.Action)
	if len(action) == 0 {
		action = "XOR"
	}
	d.PutImage(xy[0], xy[1], img, action)
	return nil
}
