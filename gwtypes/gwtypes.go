package gwtypes

import "strings"

// Kind is the primitive kind of a variable, fixed when it is declared
type Kind int

const (
	Integer  Kind = iota // 16 bit signed
	Long                 // 32 bit signed
	Single               // 32 bit float
	Double               // 64 bit float
	Currency             // fixed point, 4 decimals
	String               // length prefixed string
	Record               // user defined TYPE
)

func (k Kind) String() string {
	return []string{"INTEGER", "LONG", "SINGLE", "DOUBLE", "CURRENCY", "STRING", "RECORD"}[k]
}

// Numeric is true for the kinds arithmetic works on
func (k Kind) Numeric() bool {
	return k <= Currency
}

// Float is true for the two floating point kinds
func (k Kind) Float() bool {
	return k == Single || k == Double
}

// Spec describes what a variable, array element or record field holds
type Spec struct {
	Kind   Kind
	Record *RecordDef // set when Kind is Record
	Fixed  int        // STRING * n, zero for variable length
}

// Scalar builds a Spec for a primitive kind
func Scalar(k Kind) Spec {
	return Spec{Kind: k}
}

func (s Spec) String() string {
	switch {
	case s.Kind == Record && s.Record != nil:
		return s.Record.Name
	case s.Kind == String && s.Fixed > 0:
		return "STRING *"
	}
	return s.Kind.String()
}

// Same reports if values of both specs can be assigned without conversion
func (s Spec) Same(o Spec) bool {
	if s.Kind != o.Kind {
		return false
	}
	if s.Kind == Record {
		return s.Record == o.Record
	}
	return true
}

// FieldDef is one named member of a TYPE
type FieldDef struct {
	Name string
	Type Spec
}

// RecordDef is a TYPE ... END TYPE definition
type RecordDef struct {
	Name   string
	Fields []FieldDef
}

// Field finds a member by name, case insensitive
func (rd *RecordDef) Field(name string) (int, bool) {
	for i, f := range rd.Fields {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// SuffixKind maps a type designator at the end of a name to its kind
func SuffixKind(name string) (Kind, bool) {
	if len(name) == 0 {
		return Single, false
	}
	switch name[len(name)-1] {
	case '%':
		return Integer, true
	case '&':
		return Long, true
	case '!':
		return Single, true
	case '#':
		return Double, true
	case '@':
		return Currency, true
	case '$':
		return String, true
	}
	return Single, false
}

// KindByName maps the AS clause of a declaration
func KindByName(name string) (Kind, bool) {
	switch strings.ToUpper(name) {
	case "INTEGER":
		return Integer, true
	case "LONG":
		return Long, true
	case "SINGLE":
		return Single, true
	case "DOUBLE":
		return Double, true
	case "CURRENCY":
		return Currency, true
	case "STRING":
		return String, true
	}
	return Single, false
}
