package object

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/navionguy/qbasic/ast"
	"github.com/rs/zerolog"
)

// HandlerMode is the state of an error handler slot
type HandlerMode int

const (
	HandlerUnset      HandlerMode = iota // faults are not handled here
	HandlerResumeNext                    // skip the failing statement
	HandlerGoto                          // jump to Target
)

func (hm HandlerMode) String() string {
	return []string{"Unset", "ResumeNext", "GoTo"}[hm]
}

// Handler is an error handler registration
type Handler struct {
	Mode   HandlerMode
	Target ast.Path
}

// Clear returns the slot to Unset
func (h *Handler) Clear() {
	h.Mode = HandlerUnset
	h.Target = nil
}

// StepFunc is called before every statement, returning true stops the program
type StepFunc func(r *ast.Routine, p ast.Path, st ast.Statement) bool

// Frame is the state of one routine invocation
type Frame struct {
	Routine   *ast.Routine
	Vars      []*Variable
	Handler   *Handler // the main module frame shares the global slot
	Handling  bool     // an error handler is running in this frame
	FaultPath ast.Path // statement that raised the error being handled
	Cursor    ast.Path // statement executing now
	Line      int      // last line number passed, feeds ERL
	Loops     map[*ast.ForStatement]any

	gosub []ast.Path
}

// NewFrame allocates storage for every variable of a routine
func NewFrame(r *ast.Routine) *Frame {
	f := &Frame{Routine: r, Handler: &Handler{}}
	f.Reset()
	return f
}

// Reset puts every variable back to its initial value and forgets
// all GOSUB return points and loop state
func (f *Frame) Reset() {
	f.Vars = make([]*Variable, len(f.Routine.Locals))
	for i, l := range f.Routine.Locals {
		v := &Variable{Type: l.Type}
		if !l.Array {
			v.Value = Zero(l.Type)
		}
		f.Vars[i] = v
	}
	f.gosub = nil
	f.Loops = map[*ast.ForStatement]any{}
}

// PushGosub saves a return point, returns stack depth
func (f *Frame) PushGosub(ret ast.Path) int {
	f.gosub = append(f.gosub, ret)
	return len(f.gosub)
}

// PopGosub removes the newest return point, false if there isn't one
func (f *Frame) PopGosub() (ast.Path, bool) {
	l := len(f.gosub)
	if l == 0 {
		return nil, false
	}
	ret := f.gosub[l-1]
	f.gosub = f.gosub[:l-1]
	return ret, true
}

// GosubDepth how many GOSUBs are waiting for RETURN
func (f *Frame) GosubDepth() int {
	return len(f.gosub)
}

// Environment is the execution context of one running program
type Environment struct {
	Program  *ast.Program
	Global   Handler // ON ERROR, shared with the main module frame
	Err      int     // value of ERR
	Erl      int     // value of ERL
	ExitCode int

	Stepper StepFunc             // debug hook, may be nil
	Yield   func()               // called by loops that have no exit condition
	OnEnd   func(code int)       // program ended, may be nil
	Sleep   func(time.Duration)  // SLEEP waits through this
	Now     func() time.Time     // TIMER reads this
	Log     zerolog.Logger

	frames  []*Frame
	term    Console
	display Display
	data    int        // next DATA item READ will use
	rnd     *rand.Rand // random number generator
	rndVal  float32    // most recent generated value
	scratch []byte     // number formatting buffer
}

// NewEnvironment creates the run state for prog with a terminal front-end
func NewEnvironment(prog *ast.Program, term Console) *Environment {
	e := &Environment{
		Program: prog,
		term:    term,
		Yield:   runtime.Gosched,
		Sleep:   time.Sleep,
		Now:     time.Now,
		Log:     zerolog.Nop(),
		scratch: make([]byte, 0, 64),
	}

	// initialize my random number generator
	e.rnd = rand.New(rand.NewSource(37))
	e.rndVal = e.rnd.Float32()
	return e
}

// Terminal allows access to the terminal console
func (e *Environment) Terminal() Console {
	return e.term
}

// SetDisplay attaches a drawing surface
func (e *Environment) SetDisplay(d Display) {
	e.display = d
}

// Display returns the drawing surface, nil when there isn't one
func (e *Environment) Display() Display {
	return e.display
}

// PushFrame enters a routine, the first frame pushed is the main module
func (e *Environment) PushFrame(r *ast.Routine) *Frame {
	f := NewFrame(r)
	if len(e.frames) == 0 {
		f.Handler = &e.Global
	}
	e.frames = append(e.frames, f)
	return f
}

// PopFrame leaves the innermost routine
func (e *Environment) PopFrame() {
	if len(e.frames) == 0 {
		panic("PopFrame with no active frame")
	}
	e.frames[len(e.frames)-1] = nil
	e.frames = e.frames[:len(e.frames)-1]
}

// Frame is the innermost active frame
func (e *Environment) Frame() *Frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// MainFrame is the main module frame
func (e *Environment) MainFrame() *Frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[0]
}

// Depth is the number of active frames
func (e *Environment) Depth() int {
	return len(e.frames)
}

// FrameAt returns the frame at depth i, 0 being the main module
func (e *Environment) FrameAt(i int) *Frame {
	return e.frames[i]
}

// CurrentPath is the statement the innermost frame is executing
func (e *Environment) CurrentPath() ast.Path {
	if f := e.Frame(); f != nil {
		return f.Cursor
	}
	return nil
}

// Variable finds the cell a resolved slot refers to
func (e *Environment) Variable(slot ast.Slot) *Variable {
	f := e.Frame()
	if slot.Global {
		f = e.MainFrame()
	}
	return f.Vars[slot.Index]
}

// ReadData returns the next DATA constant, false when there are no more
func (e *Environment) ReadData() (ast.Expression, bool) {
	if e.data >= len(e.Program.Data) {
		return nil, false
	}
	exp := e.Program.Data[e.data]
	e.data++
	return exp, true
}

// Restore moves the DATA cursor
func (e *Environment) Restore(index int) {
	e.data = index
}

// Clear resets the main module, only legal from main module code
func (e *Environment) Clear() {
	if mf := e.MainFrame(); mf != nil {
		mf.Reset()
	}
	e.data = 0
}

// Scratch returns an empty buffer for number formatting
func (e *Environment) Scratch() []byte {
	return e.scratch[:0]
}

// KeepScratch holds on to a buffer that grew so it is reused
func (e *Environment) KeepScratch(buf []byte) {
	if cap(buf) > cap(e.scratch) {
		e.scratch = buf[:0]
	}
}

// Random returns a random number between 0 and 1
// if x is greater than zero, a new random number is generated
// zero returns the current rndVal, negative reseeds first
func (e *Environment) Random(x int) *FloatSgl {
	if x < 0 {
		e.Randomize(int64(x))
	}
	if x != 0 {
		e.rndVal = e.rnd.Float32()
	}
	return &FloatSgl{Value: e.rndVal}
}

// Randomize takes in a new seed and starts a new random series
func (e *Environment) Randomize(seed int64) {
	e.rnd = rand.New(rand.NewSource(seed))
	e.rndVal = e.rnd.Float32()
}
