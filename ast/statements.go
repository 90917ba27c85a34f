package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
)

// LetStatement assigns a value, the value is converted to the target's kind
type LetStatement struct {
	Token token.Token
	Name  Assignable
	Value Expression
}

func (ls *LetStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string       { return ls.Name.String() + " = " + ls.Value.String() }

// CallStatement invokes a SUB
type CallStatement struct {
	Token     token.Token
	Name      string
	Arguments []Expression
	Routine   *Routine // resolved
}

func (cs *CallStatement) statementNode() {}

// TokenLiteral returns my token literal
func (cs *CallStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *CallStatement) String() string {
	if len(cs.Arguments) == 0 {
		return "CALL " + cs.Name
	}
	return "CALL " + cs.Name + "(" + joinExpressions(cs.Arguments, ", ") + ")"
}

// LabelStatement marks a named jump target
type LabelStatement struct {
	Token token.Token
	Name  string
}

func (lb *LabelStatement) statementNode() {}

// TokenLiteral returns my token literal
func (lb *LabelStatement) TokenLiteral() string { return lb.Token.Literal }
func (lb *LabelStatement) String() string       { return lb.Name + ":" }

// LineNumStmt marks a numbered line, it is a jump target and feeds ERL
type LineNumStmt struct {
	Token token.Token
	Value int32
}

func (lns *LineNumStmt) statementNode() {}

// TokenLiteral returns my token literal
func (lns *LineNumStmt) TokenLiteral() string { return lns.Token.Literal }
func (lns *LineNumStmt) String() string       { return fmt.Sprintf("%d", lns.Value) }

// GotoStatement transfers control inside the same routine
type GotoStatement struct {
	Token  token.Token
	Label  string
	Target Path // resolved
}

func (gs *GotoStatement) statementNode() {}

// TokenLiteral returns my token literal
func (gs *GotoStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GotoStatement) String() string       { return "GOTO " + gs.Label }

// GosubStatement pushes a return point and jumps
type GosubStatement struct {
	Token  token.Token
	Label  string
	Target Path // resolved
}

func (gs *GosubStatement) statementNode() {}

// TokenLiteral returns my token literal
func (gs *GosubStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GosubStatement) String() string       { return "GOSUB " + gs.Label }

// ReturnStatement pops the most recent GOSUB
// with a label it discards the return point and jumps there
type ReturnStatement struct {
	Token  token.Token
	Label  string
	Target Path // resolved, nil when no label
}

func (rs *ReturnStatement) statementNode() {}

// TokenLiteral returns my token literal
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if len(rs.Label) > 0 {
		return "RETURN " + rs.Label
	}
	return "RETURN"
}

// OnGotoStatement is the computed ON n GOTO/GOSUB
type OnGotoStatement struct {
	Token    token.Token
	Selector Expression
	Labels   []string
	Targets  []Path // resolved, parallel to Labels
	Gosub    bool
}

func (og *OnGotoStatement) statementNode() {}

// TokenLiteral returns my token literal
func (og *OnGotoStatement) TokenLiteral() string { return og.Token.Literal }
func (og *OnGotoStatement) String() string {
	verb := " GOTO "
	if og.Gosub {
		verb = " GOSUB "
	}
	return "ON " + og.Selector.String() + verb + strings.Join(og.Labels, ", ")
}

// HandlerAction is what an ON ERROR statement installs
type HandlerAction int

const (
	HandlerDisable    HandlerAction = iota // ON ERROR GOTO 0
	HandlerResumeNext                      // ON ERROR RESUME NEXT
	HandlerGoto                            // ON ERROR GOTO label
)

// OnErrorStatement installs or removes an error handler
type OnErrorStatement struct {
	Token  token.Token
	Local  bool // ON LOCAL ERROR
	Action HandlerAction
	Label  string
	Target Path // resolved, in the main module unless Local
}

func (oe *OnErrorStatement) statementNode() {}

// TokenLiteral returns my token literal
func (oe *OnErrorStatement) TokenLiteral() string { return oe.Token.Literal }
func (oe *OnErrorStatement) String() string {
	out := "ON "
	if oe.Local {
		out += "LOCAL "
	}
	switch oe.Action {
	case HandlerResumeNext:
		return out + "ERROR RESUME NEXT"
	case HandlerGoto:
		return out + "ERROR GOTO " + oe.Label
	}
	return out + "ERROR GOTO 0"
}

// ResumeMode picks where RESUME continues
type ResumeMode int

const (
	ResumeRetry ResumeMode = iota // RESUME, RESUME 0
	ResumeNext                    // RESUME NEXT
	ResumeLabel                   // RESUME label
)

// ResumeStatement leaves an error handler
type ResumeStatement struct {
	Token  token.Token
	Mode   ResumeMode
	Label  string
	Target Path // resolved for ResumeLabel
}

func (rs *ResumeStatement) statementNode() {}

// TokenLiteral returns my token literal
func (rs *ResumeStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ResumeStatement) String() string {
	switch rs.Mode {
	case ResumeNext:
		return "RESUME NEXT"
	case ResumeLabel:
		return "RESUME " + rs.Label
	}
	return "RESUME"
}

// ErrorStatement raises error number Code
type ErrorStatement struct {
	Token token.Token
	Code  Expression
}

func (es *ErrorStatement) statementNode() {}

// TokenLiteral returns my token literal
func (es *ErrorStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ErrorStatement) String() string       { return "ERROR " + es.Code.String() }

// ExitKind names the construct an EXIT leaves
type ExitKind int

const (
	ExitDo ExitKind = iota
	ExitFor
	ExitSub
	ExitFunction
	ExitDef
)

func (ek ExitKind) String() string {
	return []string{"DO", "FOR", "SUB", "FUNCTION", "DEF"}[ek]
}

// ExitStatement leaves the nearest enclosing construct of Kind
type ExitStatement struct {
	Token token.Token
	Kind  ExitKind
}

func (es *ExitStatement) statementNode() {}

// TokenLiteral returns my token literal
func (es *ExitStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExitStatement) String() string       { return "EXIT " + es.Kind.String() }

// EndStatement ends the program, SYSTEM is the same thing
type EndStatement struct {
	Token  token.Token
	Code   Expression // optional exit code
	System bool
}

func (es *EndStatement) statementNode() {}

// TokenLiteral returns my token literal
func (es *EndStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EndStatement) String() string {
	out := "END"
	if es.System {
		out = "SYSTEM"
	}
	if es.Code != nil {
		out += " " + es.Code.String()
	}
	return out
}

// StopStatement halts like END but reports where
type StopStatement struct {
	Token token.Token
}

func (ss *StopStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ss *StopStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *StopStatement) String() string       { return "STOP" }

// Bound is one dimension of a DIM, Lower may be nil meaning 0
type Bound struct {
	Lower Expression
	Upper Expression
}

// DimVar is one variable in a DIM list
type DimVar struct {
	Name   *Identifier
	Bounds []Bound // empty for a scalar declaration
	Type   gwtypes.Spec
	AsType string // the AS clause, empty if none
}

// DimStatement declares variables and allocates arrays
type DimStatement struct {
	Token  token.Token
	Vars   []*DimVar
	Redim  bool
	Shared bool
}

func (ds *DimStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ds *DimStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DimStatement) String() string {
	var out bytes.Buffer
	if ds.Redim {
		out.WriteString("REDIM ")
	} else {
		out.WriteString("DIM ")
	}
	if ds.Shared {
		out.WriteString("SHARED ")
	}
	for i, dv := range ds.Vars {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(dv.Name.Name)
		if len(dv.Bounds) > 0 {
			dims := []string{}
			for _, b := range dv.Bounds {
				if b.Lower != nil {
					dims = append(dims, b.Lower.String()+" TO "+b.Upper.String())
				} else {
					dims = append(dims, b.Upper.String())
				}
			}
			out.WriteString("(" + strings.Join(dims, ", ") + ")")
		}
		if len(dv.AsType) > 0 {
			out.WriteString(" AS " + dv.AsType)
		}
	}
	return out.String()
}

// EraseStatement deallocates arrays
type EraseStatement struct {
	Token  token.Token
	Arrays []*Identifier
}

func (es *EraseStatement) statementNode() {}

// TokenLiteral returns my token literal
func (es *EraseStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EraseStatement) String() string {
	names := []string{}
	for _, a := range es.Arrays {
		names = append(names, a.Name)
	}
	return "ERASE " + strings.Join(names, ", ")
}

// ClearCommand resets all variables
type ClearCommand struct {
	Token token.Token
}

func (clr *ClearCommand) statementNode() {}

// TokenLiteral returns my token literal
func (clr *ClearCommand) TokenLiteral() string { return clr.Token.Literal }
func (clr *ClearCommand) String() string       { return "CLEAR" }

// SwapStatement exchanges two variables of the same type
type SwapStatement struct {
	Token token.Token
	Left  Assignable
	Right Assignable
}

func (ss *SwapStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ss *SwapStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SwapStatement) String() string {
	return "SWAP " + ss.Left.String() + ", " + ss.Right.String()
}

// DataStatement holds constants for READ, it does nothing when executed
type DataStatement struct {
	Token  token.Token
	Consts []Expression
}

func (ds *DataStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ds *DataStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DataStatement) String() string       { return "DATA " + joinExpressions(ds.Consts, ", ") }

// ReadStatement pulls DATA constants into variables
type ReadStatement struct {
	Token token.Token
	Vars  []Assignable
}

func (rd *ReadStatement) statementNode() {}

// TokenLiteral returns my token literal
func (rd *ReadStatement) TokenLiteral() string { return rd.Token.Literal }
func (rd *ReadStatement) String() string {
	exps := make([]Expression, len(rd.Vars))
	for i, v := range rd.Vars {
		exps[i] = v
	}
	return "READ " + joinExpressions(exps, ", ")
}

// RestoreStatement rewinds the DATA cursor
type RestoreStatement struct {
	Token token.Token
	Label string
	Index int // resolved index of the first DATA item to read
}

func (rs *RestoreStatement) statementNode() {}

// TokenLiteral returns my token literal
func (rs *RestoreStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RestoreStatement) String() string {
	if len(rs.Label) > 0 {
		return "RESTORE " + rs.Label
	}
	return "RESTORE"
}

// PrintStatement writes to the console
// Separators holds the ";" or "," following each item, "" for none
type PrintStatement struct {
	Token      token.Token
	Items      []Expression
	Separators []string
}

func (ps *PrintStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) String() string {
	var out bytes.Buffer
	out.WriteString("PRINT")
	for i, item := range ps.Items {
		out.WriteString(" " + item.String())
		if i < len(ps.Separators) {
			out.WriteString(ps.Separators[i])
		}
	}
	return out.String()
}

// LocateStatement moves the cursor, either position may be nil
type LocateStatement struct {
	Token token.Token
	Row   Expression
	Col   Expression
}

func (ls *LocateStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ls *LocateStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LocateStatement) String() string {
	return "LOCATE " + joinExpressions([]Expression{ls.Row, ls.Col}, ", ")
}

// ClsStatement command to clear screen
type ClsStatement struct {
	Token token.Token
}

func (cls *ClsStatement) statementNode() {}

// TokenLiteral returns my token literal
func (cls *ClsStatement) TokenLiteral() string { return cls.Token.Literal }
func (cls *ClsStatement) String() string       { return "CLS" }

// ColorStatement changes foreground/background colors
type ColorStatement struct {
	Token token.Token
	Parms []Expression // foreground, background, either may be nil
}

func (color *ColorStatement) statementNode() {}

// TokenLiteral returns my token literal
func (color *ColorStatement) TokenLiteral() string { return color.Token.Literal }
func (color *ColorStatement) String() string       { return "COLOR " + joinExpressions(color.Parms, ", ") }

// BeepStatement triggers a beep, no parameters
type BeepStatement struct {
	Token token.Token
}

func (bp *BeepStatement) statementNode() {}

// TokenLiteral returns my token literal
func (bp *BeepStatement) TokenLiteral() string { return bp.Token.Literal }
func (bp *BeepStatement) String() string       { return "BEEP" }

// InputStatement reads comma separated values from the console
type InputStatement struct {
	Token        token.Token
	Prompt       string
	QuestionMark bool
	Vars         []Assignable
}

func (is *InputStatement) statementNode() {}

// TokenLiteral returns my token literal
func (is *InputStatement) TokenLiteral() string { return is.Token.Literal }
func (is *InputStatement) String() string {
	exps := make([]Expression, len(is.Vars))
	for i, v := range is.Vars {
		exps[i] = v
	}
	sep := ", "
	if is.QuestionMark {
		sep = "; "
	}
	if len(is.Prompt) == 0 {
		return "INPUT " + joinExpressions(exps, ", ")
	}
	return `INPUT "` + is.Prompt + `"` + sep + joinExpressions(exps, ", ")
}

// LineInputStatement reads a whole line into a string
type LineInputStatement struct {
	Token  token.Token
	Prompt string
	Var    Assignable
}

func (li *LineInputStatement) statementNode() {}

// TokenLiteral returns my token literal
func (li *LineInputStatement) TokenLiteral() string { return li.Token.Literal }
func (li *LineInputStatement) String() string {
	if len(li.Prompt) == 0 {
		return "LINE INPUT " + li.Var.String()
	}
	return `LINE INPUT "` + li.Prompt + `"; ` + li.Var.String()
}

// SleepStatement waits for a key or a timeout
type SleepStatement struct {
	Token   token.Token
	Seconds Expression // nil waits for a key
}

func (ss *SleepStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ss *SleepStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SleepStatement) String() string {
	if ss.Seconds == nil {
		return "SLEEP"
	}
	return "SLEEP " + ss.Seconds.String()
}

// RandomizeStatement reseeds RND
type RandomizeStatement struct {
	Token token.Token
	Seed  Expression // nil uses TIMER
}

func (rs *RandomizeStatement) statementNode() {}

// TokenLiteral returns my token literal
func (rs *RandomizeStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *RandomizeStatement) String() string {
	if rs.Seed == nil {
		return "RANDOMIZE"
	}
	return "RANDOMIZE " + rs.Seed.String()
}
