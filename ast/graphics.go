package ast

import (
	"github.com/navionguy/qbasic/token"
)

// ScreenStatement selects a video mode
type ScreenStatement struct {
	Token token.Token
	Mode  Expression
}

func (ss *ScreenStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ss *ScreenStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *ScreenStatement) String() string       { return "SCREEN " + ss.Mode.String() }

// PsetStatement plots one pixel, Color may be nil
type PsetStatement struct {
	Token token.Token
	X, Y  Expression
	Color Expression
}

func (ps *PsetStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ps *PsetStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PsetStatement) String() string {
	out := "PSET (" + ps.X.String() + ", " + ps.Y.String() + ")"
	if ps.Color != nil {
		out += ", " + ps.Color.String()
	}
	return out
}

// LineStatement draws a line, a box (B) or a filled box (BF)
type LineStatement struct {
	Token          token.Token
	X1, Y1, X2, Y2 Expression
	Color          Expression
	Box            bool
	Fill           bool
}

func (ls *LineStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ls *LineStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LineStatement) String() string {
	out := "LINE (" + ls.X1.String() + ", " + ls.Y1.String() + ")-(" + ls.X2.String() + ", " + ls.Y2.String() + ")"
	if ls.Color != nil || ls.Box {
		out += ", "
		if ls.Color != nil {
			out += ls.Color.String()
		}
	}
	switch {
	case ls.Fill:
		out += ", BF"
	case ls.Box:
		out += ", B"
	}
	return out
}

// CircleStatement draws a circle, arc or ellipse
type CircleStatement struct {
	Token      token.Token
	X, Y       Expression
	Radius     Expression
	Color      Expression
	Start, End Expression // arc angles in radians
	Aspect     Expression
}

func (cs *CircleStatement) statementNode() {}

// TokenLiteral returns my token literal
func (cs *CircleStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *CircleStatement) String() string {
	return "CIRCLE (" + cs.X.String() + ", " + cs.Y.String() + "), " +
		joinExpressions([]Expression{cs.Radius, cs.Color, cs.Start, cs.End, cs.Aspect}, ", ")
}

// PaintStatement flood fills from a seed point
type PaintStatement struct {
	Token  token.Token
	X, Y   Expression
	Fill   Expression
	Border Expression
}

func (ps *PaintStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ps *PaintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PaintStatement) String() string {
	return "PAINT (" + ps.X.String() + ", " + ps.Y.String() + "), " + joinExpressions([]Expression{ps.Fill, ps.Border}, ", ")
}

// GetStatement copies a screen rectangle into an array
type GetStatement struct {
	Token          token.Token
	X1, Y1, X2, Y2 Expression
	Array          *Identifier
}

func (gs *GetStatement) statementNode() {}

// TokenLiteral returns my token literal
func (gs *GetStatement) TokenLiteral() string { return gs.Token.Literal }
func (gs *GetStatement) String() string {
	return "GET (" + gs.X1.String() + ", " + gs.Y1.String() + ")-(" + gs.X2.String() + ", " + gs.Y2.String() + "), " + gs.Array.Name
}

// PutStatement blits an image saved by GET
type PutStatement struct {
	Token  token.Token
	X, Y   Expression
	Array  *Identifier
	Action string // PSET, PRESET, AND, OR, XOR; empty means XOR
}

func (ps *PutStatement) statementNode() {}

// TokenLiteral returns my token literal
func (ps *PutStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PutStatement) String() string {
	out := "PUT (" + ps.X.String() + ", " + ps.Y.String() + "), " + ps.Array.Name
	if len(ps.Action) > 0 {
		out += ", " + upper(ps.Action)
	}
	return out
}
