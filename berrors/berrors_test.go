package berrors

import (
	"errors"
	"testing"

	"github.com/navionguy/qbasic/token"
	"github.com/stretchr/testify/assert"
)

func TestTextForError(t *testing.T) {
	tests := []struct {
		inp int
		exp string
	}{
		{inp: CantContinue, exp: "Can't continue"},
		{inp: DivByZero, exp: "Division by zero"},
		{inp: FileNotFound, exp: "File not found"},
		{inp: IllegalDirect, exp: "Illegal direct"},
		{inp: NextWithoutFor, exp: "NEXT without FOR"},
		{inp: OutOfData, exp: "Out of DATA"},
		{inp: Overflow, exp: "Overflow"},
		{inp: ReturnWoGosub, exp: "RETURN without GOSUB"},
		{inp: ResumeWoError, exp: "RESUME without error"},
		{inp: Syntax, exp: "Syntax error"},
		{inp: TypeMismatch, exp: "Type mismatch"},
		{inp: UndefinedFunction, exp: "Undefined user function"},
		{inp: UnDefinedLineNumber, exp: "Label not defined"},
		{inp: UndefinedSub, exp: "Subprogram not defined"},
		{inp: InputPastEnd, exp: "Input past end of file"},
		{inp: 100, exp: "Unprintable error"},
	}

	for _, tt := range tests {
		rc := TextForError(tt.inp)

		assert.EqualValuesf(t, tt.exp, rc, "TextForError(%d) got %s, wanted %s", tt.inp, rc, tt.exp)
	}
}

func TestErrorNumbers(t *testing.T) {
	// these leak out through ERR so they must match the historical values
	assert.Equal(t, 3, ReturnWoGosub)
	assert.Equal(t, 5, IllegalFuncCallErr)
	assert.Equal(t, 6, Overflow)
	assert.Equal(t, 9, SubscriptRange)
	assert.Equal(t, 11, DivByZero)
	assert.Equal(t, 13, TypeMismatch)
	assert.Equal(t, 19, NoResume)
	assert.Equal(t, 20, ResumeWoError)
	assert.Equal(t, 35, UndefinedSub)
	assert.Equal(t, 62, InputPastEnd)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code int
		exp  Kind
	}{
		{code: Overflow, exp: KindOverflow},
		{code: TypeMismatch, exp: KindTypeMismatch},
		{code: DivByZero, exp: KindDivisionByZero},
		{code: IllegalFuncCallErr, exp: KindIllegalFunctionCall},
		{code: Syntax, exp: KindSyntax},
		{code: UnDefinedLineNumber, exp: KindUndefinedLabel},
		{code: CrossRoutineJump, exp: KindUndefinedLabel},
		{code: UndefinedSub, exp: KindUndefinedSubprogram},
		{code: ResumeWoError, exp: KindResumeWithoutError},
		{code: ReturnWoGosub, exp: KindReturnWithoutGosub},
		{code: OutOfData, exp: KindOther},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.exp, KindOf(tt.code), "KindOf(%d)", tt.code)
	}
	assert.Equal(t, "DivisionByZero", KindDivisionByZero.String())
}

func TestRuntimeError(t *testing.T) {
	re := &RuntimeError{Code: Overflow, Kind: KindOverflow, Message: "Overflow",
		Token: token.Token{Literal: "+", Line: 2, Col: 7}, Routine: "CALC", Line: 20}

	var err error = re
	assert.Equal(t, `Overflow in 20 (CALC) at "+" at 2:7`, err.Error())

	var target *RuntimeError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, KindOverflow, target.Kind)
}

func TestCompileErrors(t *testing.T) {
	ces := CompileErrors{
		NewCompileError(UnDefinedLineNumber, token.Token{Literal: "done"}, "MAIN", "DONE"),
		NewCompileError(ExitOutsideBlock, token.Token{}, "", "EXIT DO"),
	}

	assert.Equal(t, KindUndefinedLabel, ces[0].Kind)
	assert.Equal(t, "Label not defined: DONE in MAIN at \"done\"\nEXIT not within block: EXIT DO", ces.Error())
}
