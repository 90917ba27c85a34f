package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
)

// Node defines interface for all node types
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement defines the interface for all statement nodes
type Statement interface {
	Node
	statementNode()
}

//Expression defines interface for all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Assignable is an expression that names storage
// a scalar variable, an array element or a record field
type Assignable interface {
	Expression
	assignable()
}

// Slot is where the resolver placed a variable
type Slot struct {
	Global bool         // lives in the main module frame
	Index  int          // index into the frame's variable table
	Type   gwtypes.Spec // declared type of the variable or array element
	Array  bool
}

// Identifier references a variable, or a whole array when written a()
type Identifier struct {
	Token token.Token
	Name  string
	Slot  Slot // filled in by the resolver
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) assignable()     {}

// TokenLiteral returns my token literal
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string {
	if i.Slot.Array {
		return i.Name + "()"
	}
	return i.Name
}

// IndexExpression is an array element reference
type IndexExpression struct {
	Token   token.Token // the '(' token
	Array   *Identifier
	Indices []Expression
}

func (ie *IndexExpression) expressionNode() {}
func (ie *IndexExpression) assignable()     {}

// TokenLiteral returns my token literal
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return ie.Array.Name + "(" + joinExpressions(ie.Indices, ", ") + ")"
}

// FieldExpression selects a member of a record
type FieldExpression struct {
	Token token.Token // the '.' token
	Base  Assignable
	Name  string
	Field int          // resolved member index
	Type  gwtypes.Spec // resolved member type
}

func (fe *FieldExpression) expressionNode() {}
func (fe *FieldExpression) assignable()     {}

// TokenLiteral returns my token literal
func (fe *FieldExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *FieldExpression) String() string       { return fe.Base.String() + "." + fe.Name }

// IntegerLiteral holds a 16 bit integer constant
type IntegerLiteral struct {
	Token token.Token
	Value int16
}

func (il *IntegerLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return fmt.Sprintf("%d", il.Value) }

// DblIntegerLiteral holds a 32 bit integer constant
type DblIntegerLiteral struct {
	Token token.Token
	Value int32
}

func (dil *DblIntegerLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (dil *DblIntegerLiteral) TokenLiteral() string { return dil.Token.Literal }
func (dil *DblIntegerLiteral) String() string       { return fmt.Sprintf("%d&", dil.Value) }

// FloatSingleLiteral single precision constant
type FloatSingleLiteral struct {
	Token token.Token
	Value float32
}

func (fsl *FloatSingleLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (fsl *FloatSingleLiteral) TokenLiteral() string { return fsl.Token.Literal }
func (fsl *FloatSingleLiteral) String() string       { return fmt.Sprintf("%g!", fsl.Value) }

// FloatDoubleLiteral double precision constant
type FloatDoubleLiteral struct {
	Token token.Token
	Value float64
}

func (fdl *FloatDoubleLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (fdl *FloatDoubleLiteral) TokenLiteral() string { return fdl.Token.Literal }
func (fdl *FloatDoubleLiteral) String() string       { return fmt.Sprintf("%g#", fdl.Value) }

// CurrencyLiteral fixed point constant
type CurrencyLiteral struct {
	Token token.Token
	Value decimal.Decimal
}

func (cl *CurrencyLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (cl *CurrencyLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *CurrencyLiteral) String() string       { return cl.Value.String() + "@" }

// StringLiteral holds a quoted string
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode() {}

// TokenLiteral returns my token literal
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return `"` + sl.Value + `"` }

// GroupedExpression is an expression in parens
type GroupedExpression struct {
	Token token.Token
	Exp   Expression
}

func (ge *GroupedExpression) expressionNode() {}

// TokenLiteral returns my token literal
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupedExpression) String() string       { return "(" + ge.Exp.String() + ")" }

// PrefixExpression is a unary - or NOT
type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode() {}

// TokenLiteral returns my token literal
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	if pe.Operator == token.NOT {
		return "NOT " + pe.Right.String()
	}
	return pe.Operator + pe.Right.String()
}

// InfixExpression is a binary operation, faults are blamed on Token
type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode() {}

// TokenLiteral returns my token literal
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return ie.Left.String() + " " + ie.Operator + " " + ie.Right.String()
}

// CallExpression calls a FUNCTION, a DEF FN or a builtin
type CallExpression struct {
	Token     token.Token
	Name      string
	Arguments []Expression
	Routine   *Routine // resolved user routine, nil for a builtin
}

func (ce *CallExpression) expressionNode() {}

// TokenLiteral returns my token literal
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	if len(ce.Arguments) == 0 {
		return ce.Name
	}
	return ce.Name + "(" + joinExpressions(ce.Arguments, ", ") + ")"
}

func joinExpressions(exps []Expression, sep string) string {
	var out bytes.Buffer
	for i, e := range exps {
		if i > 0 {
			out.WriteString(sep)
		}
		if e != nil {
			out.WriteString(e.String())
		}
	}
	return out.String()
}

func upper(s string) string {
	return strings.ToUpper(s)
}
