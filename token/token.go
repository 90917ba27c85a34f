package token

import (
	"fmt"
	"strings"
)

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	EOL     = "EOL"

	// Identifiers + literals
	IDENT    = "IDENT"  // add, foobar, x, y, ...
	LABEL    = "LABEL"  // start:, 100
	LINENUM  = "####"   // 10, 15, 20, ...
	INT      = "INT"    // -32768 to 32767
	INTD     = "INTD"   // 32 bit integer
	STRING   = "STRING" // "A string literal"
	FLOAT    = "FLOAT"  // 2.539999E+01
	FLOATD   = "FLOATD" // 2.539999D+01
	CURRENCY = "CURRENCY"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	BSLASH   = "\\"
	CARET    = "^"

	LT = "<"
	GT = ">"

	EQ     = "="
	NOT_EQ = "<>"
	GTE    = ">="
	LTE    = "<="

	// Type designators
	TYPE_STR = "$"
	TYPE_INT = "%"
	TYPE_LNG = "&"
	TYPE_SGL = "!"
	TYPE_DBL = "#"
	TYPE_CUR = "@"

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN = "("
	RPAREN = ")"

	// Keywords
	AND       = "AND"
	CALL      = "CALL"
	CASE      = "CASE"
	CIRCLE    = "CIRCLE"
	CLEAR     = "CLEAR"
	CLS       = "CLS"
	COLOR     = "COLOR"
	DATA      = "DATA"
	DEF       = "DEF"
	DIM       = "DIM"
	DO        = "DO"
	ELSE      = "ELSE"
	END       = "END"
	EQV       = "EQV"
	ERASE     = "ERASE"
	ERROR     = "ERROR"
	EXIT      = "EXIT"
	FOR       = "FOR"
	FUNCTION  = "FUNCTION"
	GET       = "GET"
	GOSUB     = "GOSUB"
	GOTO      = "GOTO"
	IF        = "IF"
	IMP       = "IMP"
	INPUT     = "INPUT"
	LET       = "LET"
	LINE      = "LINE"
	LOCATE    = "LOCATE"
	LOOP      = "LOOP"
	MOD       = "MOD"
	NOT       = "NOT"
	ON        = "ON"
	OR        = "OR"
	PAINT     = "PAINT"
	PRINT     = "PRINT"
	PSET      = "PSET"
	PUT       = "PUT"
	RANDOMIZE = "RANDOMIZE"
	READ      = "READ"
	REDIM     = "REDIM"
	RESTORE   = "RESTORE"
	RESUME    = "RESUME"
	RETURN    = "RETURN"
	SCREEN    = "SCREEN"
	SELECT    = "SELECT"
	SLEEP     = "SLEEP"
	STOP      = "STOP"
	SUB       = "SUB"
	SWAP      = "SWAP"
	SYSTEM    = "SYSTEM"
	XOR       = "XOR"
	BEEP      = "BEEP"
)

// Token is the piece of source a compiled node was built from.
// Line and Col are 1 based, zero means unknown.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Col     int
}

// String gives a printable position for diagnostics
func (t Token) String() string {
	if t.Line == 0 {
		return fmt.Sprintf("%q", t.Literal)
	}
	return fmt.Sprintf("%q at %d:%d", t.Literal, t.Line, t.Col)
}

var keywords = map[string]TokenType{
	"and":       AND,
	"beep":      BEEP,
	"call":      CALL,
	"case":      CASE,
	"circle":    CIRCLE,
	"clear":     CLEAR,
	"cls":       CLS,
	"color":     COLOR,
	"data":      DATA,
	"def":       DEF,
	"dim":       DIM,
	"do":        DO,
	"else":      ELSE,
	"end":       END,
	"eqv":       EQV,
	"erase":     ERASE,
	"error":     ERROR,
	"exit":      EXIT,
	"for":       FOR,
	"function":  FUNCTION,
	"get":       GET,
	"gosub":     GOSUB,
	"goto":      GOTO,
	"if":        IF,
	"imp":       IMP,
	"input":     INPUT,
	"let":       LET,
	"line":      LINE,
	"locate":    LOCATE,
	"loop":      LOOP,
	"mod":       MOD,
	"not":       NOT,
	"on":        ON,
	"or":        OR,
	"paint":     PAINT,
	"print":     PRINT,
	"pset":      PSET,
	"put":       PUT,
	"randomize": RANDOMIZE,
	"read":      READ,
	"redim":     REDIM,
	"restore":   RESTORE,
	"resume":    RESUME,
	"return":    RETURN,
	"screen":    SCREEN,
	"select":    SELECT,
	"sleep":     SLEEP,
	"stop":      STOP,
	"sub":       SUB,
	"swap":      SWAP,
	"system":    SYSTEM,
	"xor":       XOR,
}

// LookupIdent returns the keyword type for ident, or IDENT
func LookupIdent(ident string) TokenType {

	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}
