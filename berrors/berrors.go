package berrors

import (
	"fmt"
	"strings"

	"github.com/navionguy/qbasic/token"
)

const (
	NextWithoutFor = iota + 1
	Syntax
	ReturnWoGosub
	OutOfData
	IllegalFuncCallErr
	Overflow
	OutOfMemory
	UnDefinedLineNumber
	SubscriptRange
	DuplicateDefinition // 10
	DivByZero
	IllegalDirect
	TypeMismatch
	StringSpace
	String2Long
	StringForm2Complex
	CantContinue
	UndefinedFunction
	NoResume
	ResumeWoError //20
	Unprintable
	MissingOp
	LineOverflow
	DeviceTimeout
	DeviceFault
	ForWoNext
	OutOfPaper
	UnprintableErr
	WhileWoWend
	WendWoWhile // 30
	_
	_
	DuplicateLabel
	_
	UndefinedSub
	_
	ArgCountMismatch
	ArrayNotDefined
	_
	VariableRequired // 40
	_
	_
	_
	_
	_
	_
	_
	_
	_
	FieldOverflow // 50
	InternalErr
	BadFileNum
	FileNotFound
	_
	_
	_
	_
	_
	_
	_ // 60
	_
	InputPastEnd
)

// compile time only conditions, never visible to ERR
const (
	ExitOutsideBlock = iota + 1000
	CrossRoutineJump
	BadHandlerScope
)

// TextForError returns the error text based on error number
func TextForError(err int) string {
	switch err {
	case ArgCountMismatch:
		return "Argument-count mismatch"
	case ArrayNotDefined:
		return "Array not defined"
	case BadHandlerScope:
		return "Error handler must be in module-level code"
	case CantContinue:
		return "Can't continue"
	case CrossRoutineJump:
		return "Label not defined in this procedure"
	case DivByZero:
		return "Division by zero"
	case DuplicateDefinition:
		return "Duplicate definition"
	case DuplicateLabel:
		return "Duplicate label"
	case ExitOutsideBlock:
		return "EXIT not within block"
	case FileNotFound:
		return "File not found"
	case IllegalDirect:
		return "Illegal direct"
	case IllegalFuncCallErr:
		return "Illegal function call"
	case InputPastEnd:
		return "Input past end of file"
	case InternalErr:
		return "Internal error"
	case NextWithoutFor:
		return "NEXT without FOR"
	case NoResume:
		return "No RESUME"
	case OutOfData:
		return "Out of DATA"
	case OutOfMemory:
		return "Out of memory"
	case Overflow:
		return "Overflow"
	case ResumeWoError:
		return "RESUME without error"
	case ReturnWoGosub:
		return "RETURN without GOSUB"
	case SubscriptRange:
		return "Subscript out of range"
	case Syntax:
		return "Syntax error"
	case TypeMismatch:
		return "Type mismatch"
	case UndefinedFunction:
		return "Undefined user function"
	case UndefinedSub:
		return "Subprogram not defined"
	case UnDefinedLineNumber:
		return "Label not defined"
	case VariableRequired:
		return "Variable required"
	}

	return "Unprintable error"
}

// Kind groups error numbers into the categories the engine reasons about
type Kind int

const (
	KindOther Kind = iota
	KindOverflow
	KindTypeMismatch
	KindDivisionByZero
	KindIllegalFunctionCall
	KindSyntax
	KindUndefinedLabel
	KindUndefinedSubprogram
	KindResumeWithoutError
	KindReturnWithoutGosub
)

func (k Kind) String() string {
	return []string{"Other", "Overflow", "TypeMismatch", "DivisionByZero", "IllegalFunctionCall",
		"SyntaxError", "UndefinedLabel", "UndefinedSubprogram", "ResumeWithoutError", "ReturnWithoutGosub"}[k]
}

// KindOf classifies an error number
func KindOf(code int) Kind {
	switch code {
	case Overflow:
		return KindOverflow
	case TypeMismatch:
		return KindTypeMismatch
	case DivByZero:
		return KindDivisionByZero
	case IllegalFuncCallErr:
		return KindIllegalFunctionCall
	case Syntax:
		return KindSyntax
	case UnDefinedLineNumber, CrossRoutineJump:
		return KindUndefinedLabel
	case UndefinedSub, UndefinedFunction:
		return KindUndefinedSubprogram
	case ResumeWoError:
		return KindResumeWithoutError
	case ReturnWoGosub:
		return KindReturnWithoutGosub
	}
	return KindOther
}

// RuntimeError is a fault no handler recovered, it ends the run
type RuntimeError struct {
	Code    int
	Kind    Kind
	Message string
	Token   token.Token // what the fault was blamed on
	Routine string      // routine executing when it happened
	Line    int         // most recent line number label, 0 if none
}

func (re *RuntimeError) Error() string {
	msg := re.Message
	if re.Line != 0 {
		msg += fmt.Sprintf(" in %d", re.Line)
	}
	if len(re.Routine) > 0 {
		msg += " (" + re.Routine + ")"
	}
	if len(re.Token.Literal) > 0 {
		msg += " at " + re.Token.String()
	}
	return msg
}

// CompileError is a problem the resolution pass found before execution
type CompileError struct {
	Code    int
	Kind    Kind
	Token   token.Token
	Routine string
	Detail  string
}

// NewCompileError builds the error with the standard message for code
func NewCompileError(code int, tk token.Token, routine, detail string) *CompileError {
	return &CompileError{Code: code, Kind: KindOf(code), Token: tk, Routine: routine, Detail: detail}
}

func (ce *CompileError) Error() string {
	msg := TextForError(ce.Code)
	if len(ce.Detail) > 0 {
		msg += ": " + ce.Detail
	}
	if len(ce.Routine) > 0 {
		msg += " in " + ce.Routine
	}
	if len(ce.Token.Literal) > 0 {
		msg += " at " + ce.Token.String()
	}
	return msg
}

// CompileErrors collects everything the resolver rejected
type CompileErrors []*CompileError

func (ces CompileErrors) Error() string {
	msgs := make([]string, 0, len(ces))
	for _, ce := range ces {
		msgs = append(msgs, ce.Error())
	}
	return strings.Join(msgs, "\n")
}
