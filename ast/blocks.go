package ast

import (
	"bytes"
	"strings"

	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
)

// Sequence is an ordered list of statements owned by exactly one
// container (or by a routine, for its root)
type Sequence struct {
	Statements []Statement
}

// Len is the number of statements in the sequence
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Statements)
}

func (s *Sequence) String() string {
	var out bytes.Buffer
	for _, st := range s.Statements {
		out.WriteString(st.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Container is a statement that owns nested sequences.
// A dispatcher walks into bodies through SeqCount/Seq without
// knowing what kind of container it is looking at.
type Container interface {
	Statement
	SeqCount() int
	Seq(i int) *Sequence
}

// IfStatement holds IF / ELSEIF arms and an optional ELSE
// Bodies[i] runs when Conditions[i] is the first true condition,
// Bodies[len(Conditions)] is the ELSE arm when present.
type IfStatement struct {
	Token      token.Token
	Conditions []Expression
	Bodies     []*Sequence
}

func (is *IfStatement) statementNode() {}

// TokenLiteral returns my token literal
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }

// SeqCount returns the number of arms
func (is *IfStatement) SeqCount() int { return len(is.Bodies) }

// Seq returns arm i
func (is *IfStatement) Seq(i int) *Sequence { return is.Bodies[i] }

// HasElse is true when the last body is an ELSE arm
func (is *IfStatement) HasElse() bool { return len(is.Bodies) > len(is.Conditions) }

func (is *IfStatement) String() string {
	var out bytes.Buffer
	for i, c := range is.Conditions {
		if i == 0 {
			out.WriteString("IF " + c.String() + " THEN\n")
		} else {
			out.WriteString("ELSEIF " + c.String() + " THEN\n")
		}
		out.WriteString(indent(is.Bodies[i]))
	}
	if is.HasElse() {
		out.WriteString("ELSE\n")
		out.WriteString(indent(is.Bodies[len(is.Conditions)]))
	}
	out.WriteString("END IF")
	return out.String()
}

// DoStatement is DO/LOOP in all its forms, WHILE/WEND included.
// A nil Condition loops until EXIT DO.
type DoStatement struct {
	Token     token.Token
	Condition Expression
	Until     bool // loop until Condition is true instead of while
	TestFirst bool // condition on the DO line rather than the LOOP line
	Body      *Sequence
}

func (ds *DoStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ds *DoStatement) TokenLiteral() string { return ds.Token.Literal }

// SeqCount always 1, the loop body
func (ds *DoStatement) SeqCount() int { return 1 }

// Seq returns the loop body
func (ds *DoStatement) Seq(i int) *Sequence { return ds.Body }

func (ds *DoStatement) String() string {
	cond := ""
	if ds.Condition != nil {
		cond = " WHILE " + ds.Condition.String()
		if ds.Until {
			cond = " UNTIL " + ds.Condition.String()
		}
	}
	if ds.TestFirst {
		return "DO" + cond + "\n" + indent(ds.Body) + "LOOP"
	}
	return "DO\n" + indent(ds.Body) + "LOOP" + cond
}

// ForStatement is FOR ... NEXT, Step may be nil
type ForStatement struct {
	Token   token.Token
	Counter *Identifier
	Start   Expression
	End     Expression
	Step    Expression
	Body    *Sequence
}

func (fs *ForStatement) statementNode() {}

// TokenLiteral returns my token literal
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }

// SeqCount always 1, the loop body
func (fs *ForStatement) SeqCount() int { return 1 }

// Seq returns the loop body
func (fs *ForStatement) Seq(i int) *Sequence { return fs.Body }

// Kind is the counter's numeric kind, it picks the loop specialisation
func (fs *ForStatement) Kind() gwtypes.Kind { return fs.Counter.Slot.Type.Kind }

func (fs *ForStatement) String() string {
	out := "FOR " + fs.Counter.Name + " = " + fs.Start.String() + " TO " + fs.End.String()
	if fs.Step != nil {
		out += " STEP " + fs.Step.String()
	}
	return out + "\n" + indent(fs.Body) + "NEXT " + fs.Counter.Name
}

// CaseTest is one test in a CASE clause.
// Op is a relation (=, <>, <, >, <=, >=) against Value, or token.TO
// for the closed range Value TO Upper.
type CaseTest struct {
	Op    string
	Value Expression
	Upper Expression
}

func (ct CaseTest) String() string {
	switch ct.Op {
	case "TO":
		return ct.Value.String() + " TO " + ct.Upper.String()
	case "=":
		return ct.Value.String()
	}
	return "IS " + ct.Op + " " + ct.Value.String()
}

// CaseClause is one CASE line, Else marks CASE ELSE
type CaseClause struct {
	Token token.Token
	Tests []CaseTest
	Else  bool
}

func (cc *CaseClause) String() string {
	if cc.Else {
		return "CASE ELSE"
	}
	tests := []string{}
	for _, t := range cc.Tests {
		tests = append(tests, t.String())
	}
	return "CASE " + strings.Join(tests, ", ")
}

// SelectStatement is SELECT CASE, Bodies parallel Cases
type SelectStatement struct {
	Token   token.Token
	Subject Expression
	Cases   []*CaseClause
	Bodies  []*Sequence
}

func (ss *SelectStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ss *SelectStatement) TokenLiteral() string { return ss.Token.Literal }

// SeqCount returns the number of CASE arms
func (ss *SelectStatement) SeqCount() int { return len(ss.Bodies) }

// Seq returns the body of arm i
func (ss *SelectStatement) Seq(i int) *Sequence { return ss.Bodies[i] }

func (ss *SelectStatement) String() string {
	var out bytes.Buffer
	out.WriteString("SELECT CASE " + ss.Subject.String() + "\n")
	for i, c := range ss.Cases {
		out.WriteString(c.String() + "\n")
		out.WriteString(indent(ss.Bodies[i]))
	}
	out.WriteString("END SELECT")
	return out.String()
}

func indent(seq *Sequence) string {
	if seq == nil {
		return ""
	}
	var out bytes.Buffer
	for _, st := range seq.Statements {
		for _, ln := range strings.Split(st.String(), "\n") {
			out.WriteString("  " + ln + "\n")
		}
	}
	return out.String()
}
