package evaluator

import (
	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/object"
)

// fail turns an expression error into a signal
func (ev *evaluator) fail(obj object.Object) *Signal {
	err := obj.(*object.Error)
	if err == halted {
		sig := ev.pending
		ev.pending = nil
		return sig
	}
	return ev.raise(err)
}

// raise routes a fault in the innermost frame.
// The frame's own slot is tried unless that frame is already handling
// an error, then the global slot unless the main module is handling.
func (ev *evaluator) raise(err *object.Error) *Signal {
	env := ev.env
	f := env.Frame()
	mf := env.MainFrame()

	owner := -1
	var h *object.Handler
	switch {
	case !f.Handling && f.Handler.Mode != object.HandlerUnset:
		owner, h = env.Depth()-1, f.Handler
	case f != mf && !mf.Handling && env.Global.Mode != object.HandlerUnset:
		owner, h = 0, &env.Global
	default:
		return ev.fatal(err)
	}

	env.Err = err.Code
	env.Erl = f.Line
	env.Log.Debug().Int("code", err.Code).Stringer("path", f.Cursor).Stringer("handler", h.Mode).Int("frame", owner).Msg("fault")

	if h.Mode == object.HandlerResumeNext {
		return gotoSignal(f.Cursor.Next())
	}
	return &Signal{Kind: SigFault, Err: err, Depth: owner, Target: h.Target}
}

// fatal ends the run with err
func (ev *evaluator) fatal(err *object.Error) *Signal {
	f := ev.env.Frame()
	sig := &Signal{Kind: SigFault, Err: err, Fatal: true, Line: f.Line}
	if f.Routine.Kind != ast.MainModule {
		sig.Routine = f.Routine.Name
	}
	return sig
}

// enterHandler starts running the handler of frame f, the statement
// the frame was executing is the one RESUME goes back to
func (ev *evaluator) enterHandler(f *object.Frame, sig *Signal) {
	f.Handling = true
	f.FaultPath = f.Cursor.Clone()
	ev.env.Log.Debug().Stringer("fault", f.FaultPath).Stringer("handler", sig.Target).Msg("handling")
}

func (ev *evaluator) execOnError(f *object.Frame, st *ast.OnErrorStatement) *Signal {
	h := &ev.env.Global
	if st.Local {
		h = f.Handler
	}

	switch st.Action {
	case ast.HandlerDisable:
		h.Clear()
		// turning off the handler that is running makes the error fatal
		if f.Handling && (st.Local || f == ev.env.MainFrame()) {
			return ev.fatal(object.StdError(ev.env.Err))
		}
	case ast.HandlerResumeNext:
		h.Mode = object.HandlerResumeNext
		h.Target = nil
	case ast.HandlerGoto:
		h.Mode = object.HandlerGoto
		h.Target = st.Target
	}
	return nil
}

func (ev *evaluator) execResume(f *object.Frame, st *ast.ResumeStatement) *Signal {
	if !f.Handling {
		return ev.raise(object.StdError(berrors.ResumeWoError).Blame(st.Token))
	}

	f.Handling = false
	ev.env.Err = 0
	switch st.Mode {
	case ast.ResumeNext:
		return gotoSignal(f.FaultPath.Next())
	case ast.ResumeLabel:
		return gotoSignal(st.Target)
	}
	return gotoSignal(f.FaultPath)
}

// execError raises a fault with a program chosen number
func (ev *evaluator) execError(st *ast.ErrorStatement) *Signal {
	code, err := ev.intArg(st.Code)
	if err != nil {
		return ev.fail(err)
	}
	if code < 1 || code > 255 {
		return ev.raise(object.StdError(berrors.IllegalFuncCallErr).Blame(st.Token))
	}
	return ev.raise(object.StdError(code).Blame(st.Token))
}
