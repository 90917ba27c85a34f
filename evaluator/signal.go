package evaluator

import (
	"fmt"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/object"
)

// SignalKind says why a statement did not simply fall through
type SignalKind int

const (
	SigGoto  SignalKind = iota // continue at Target in the current frame
	SigExit                    // leave the nearest construct of kind Exit
	SigEnd                     // program is over
	SigFault                   // an error is unwinding frames
)

func (sk SignalKind) String() string {
	return []string{"Goto", "Exit", "End", "Fault"}[sk]
}

// Signal is the unwind result a statement hands back to its dispatcher.
// A nil *Signal means carry on with the next statement.
type Signal struct {
	Kind   SignalKind
	Target ast.Path     // SigGoto, and the handler of a SigFault
	Exit   ast.ExitKind // SigExit
	Code   int          // SigEnd exit code
	Stop   bool         // SigEnd came from STOP or a break

	// SigFault
	Err     *object.Error
	Depth   int  // frame that owns the handler
	Fatal   bool // no handler, the run is over
	Routine string
	Line    int
}

func (s *Signal) String() string {
	switch s.Kind {
	case SigGoto:
		return "Goto(" + s.Target.String() + ")"
	case SigExit:
		return "Exit(" + s.Exit.String() + ")"
	case SigEnd:
		return fmt.Sprintf("End(%d)", s.Code)
	}
	if s.Fatal {
		return fmt.Sprintf("Fault(%d, fatal)", s.Err.Code)
	}
	return fmt.Sprintf("Fault(%d, frame %d, %s)", s.Err.Code, s.Depth, s.Target)
}

func gotoSignal(p ast.Path) *Signal {
	return &Signal{Kind: SigGoto, Target: p}
}

// catches reports if a dispatcher running sequence seq of the
// statement at prefix owns the target of a goto
func (s *Signal) catches(prefix ast.Path, seq int) bool {
	k := len(prefix)
	if s.Kind != SigGoto || len(s.Target) <= k {
		return false
	}
	for i := 0; i < k; i++ {
		if s.Target[i] != prefix[i] {
			return false
		}
	}
	return s.Target[k].Seq == seq
}
