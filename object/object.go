// Package object how the interpretor holds values during execution
package object

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
)

// BuiltinFunction is an intrinsic function, args arrive already evaluated
type BuiltinFunction func(env *Environment, fn *Builtin, args ...Object) Object

// ObjectType can always be displayed as a string
type ObjectType string

// Object is any value the engine computes or stores
type Object interface {
	Type() ObjectType
	Inspect() string
}

const (
	ERROR_OBJ    = "ERROR"
	INTEGER_OBJ  = "INTEGER"
	INTEGER_DBL  = "INTDBL"
	FLOATSGL_OBJ = "FLOATSGL"
	FLOATDBL_OBJ = "FLOATDBL"
	CURRENCY_OBJ = "CURRENCY"
	STRING_OBJ   = "STRING"
	ARRAY_OBJ    = "ARRAY"
	RECORD_OBJ   = "RECORD"
	BUILTIN_OBJ  = "BUILTIN"
)

// Builtin wraps an intrinsic function
type Builtin struct {
	Fn BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function" }

// Integer values
type Integer struct {
	Value int16
}

// Type returns my type
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Inspect returns value as a string
func (i *Integer) Inspect() string { return fmt.Sprintf("%d", i.Value) }

// IntDbl values
type IntDbl struct {
	Value int32 // 32bit value
}

// Type returns my type
func (id *IntDbl) Type() ObjectType { return INTEGER_DBL }

// Inspect returns value as a string
func (id *IntDbl) Inspect() string { return fmt.Sprintf("%d", id.Value) }

// FloatSgl single precision floats
type FloatSgl struct {
	Value float32 // value of the float
}

func (fs *FloatSgl) Type() ObjectType { return FLOATSGL_OBJ }
func (fs *FloatSgl) Inspect() string  { return string(AppendNumber(nil, fs)) }

// FloatDbl double precision floats
type FloatDbl struct {
	Value float64
}

func (fd *FloatDbl) Type() ObjectType { return FLOATDBL_OBJ }
func (fd *FloatDbl) Inspect() string  { return string(AppendNumber(nil, fd)) }

// Currency fixed point value with four decimal places
type Currency struct {
	Value decimal.Decimal
}

func (c *Currency) Type() ObjectType { return CURRENCY_OBJ }
func (c *Currency) Inspect() string  { return string(AppendNumber(nil, c)) }

// String values
type String struct {
	Value string
}

// Type returns my type
func (i *String) Type() ObjectType { return STRING_OBJ }

// Inspect returns value as a string
func (i *String) Inspect() string { return i.Value }

// Error is a run-time fault travelling back to the dispatcher
type Error struct {
	Code    int
	Message string
	Token   token.Token // what the fault is blamed on
	shared  bool
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Message }

// StdError builds the standard error for an error number
func StdError(code int) *Error {
	return &Error{Code: code, Message: berrors.TextForError(code)}
}

// Sentinel makes a marker error that is shared between runs,
// Blame never changes it
func Sentinel(msg string) *Error {
	return &Error{Code: -1, Message: msg, shared: true}
}

// Blame attaches a token to an error that doesn't have one yet
func (e *Error) Blame(tk token.Token) *Error {
	if !e.shared && len(e.Token.Literal) == 0 {
		e.Token = tk
	}
	return e
}

// Dim is the bounds of one array dimension
type Dim struct {
	Lower int
	Upper int
}

// Len is the number of elements in the dimension
func (d Dim) Len() int { return d.Upper - d.Lower + 1 }

// Array of elements sharing one spec, stored row-major
type Array struct {
	Elem     gwtypes.Spec
	Dims     []Dim
	Elements []Object
}

// NewArray allocates an array with every element at its zero value
func NewArray(elem gwtypes.Spec, dims []Dim) *Array {
	size := 1
	for _, d := range dims {
		size *= d.Len()
	}
	arr := &Array{Elem: elem, Dims: dims, Elements: make([]Object, size)}
	for i := range arr.Elements {
		arr.Elements[i] = Zero(elem)
	}
	return arr
}

func (ao *Array) Type() ObjectType { return ARRAY_OBJ }
func (ao *Array) Inspect() string {
	var out bytes.Buffer
	elements := []string{}
	for _, e := range ao.Elements {
		if e != nil {
			elements = append(elements, e.Inspect())
		}
	}
	out.WriteString(strings.Join(elements, ", "))
	return out.String()
}

// Offset converts subscripts to an index into Elements
// false if the count or any subscript is out of range
func (ao *Array) Offset(subs []int) (int, bool) {
	if len(subs) != len(ao.Dims) {
		return 0, false
	}
	off := 0
	for i, d := range ao.Dims {
		if subs[i] < d.Lower || subs[i] > d.Upper {
			return 0, false
		}
		off = off*d.Len() + subs[i] - d.Lower
	}
	return off, true
}

// Record is an instance of a TYPE
type Record struct {
	Def    *gwtypes.RecordDef
	Fields []Object
}

// NewRecord creates a record with zero values in every field
func NewRecord(def *gwtypes.RecordDef) *Record {
	rec := &Record{Def: def, Fields: make([]Object, len(def.Fields))}
	for i, f := range def.Fields {
		rec.Fields[i] = Zero(f.Type)
	}
	return rec
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	fields := []string{}
	for i, f := range r.Fields {
		fields = append(fields, r.Def.Fields[i].Name+"="+f.Inspect())
	}
	return r.Def.Name + "{" + strings.Join(fields, ", ") + "}"
}

// Clone makes a deep copy, records nested inside are copied too
func (r *Record) Clone() *Record {
	cp := &Record{Def: r.Def, Fields: make([]Object, len(r.Fields))}
	for i, f := range r.Fields {
		if sub, ok := f.(*Record); ok {
			cp.Fields[i] = sub.Clone()
			continue
		}
		cp.Fields[i] = f
	}
	return cp
}

// Variable is a storage cell, passing it to a procedure shares it
type Variable struct {
	Value Object
	Type  gwtypes.Spec
}

// Zero returns the initial value for a spec
func Zero(spec gwtypes.Spec) Object {
	switch spec.Kind {
	case gwtypes.Integer:
		return &Integer{}
	case gwtypes.Long:
		return &IntDbl{}
	case gwtypes.Single:
		return &FloatSgl{}
	case gwtypes.Double:
		return &FloatDbl{}
	case gwtypes.Currency:
		return &Currency{Value: decimal.Zero}
	case gwtypes.String:
		return &String{Value: strings.Repeat(" ", spec.Fixed)}
	case gwtypes.Record:
		return NewRecord(spec.Record)
	}
	panic(fmt.Sprintf("no zero value for %s", spec))
}

// KindOf returns the primitive kind of a scalar value
func KindOf(obj Object) (gwtypes.Kind, bool) {
	switch obj.(type) {
	case *Integer:
		return gwtypes.Integer, true
	case *IntDbl:
		return gwtypes.Long, true
	case *FloatSgl:
		return gwtypes.Single, true
	case *FloatDbl:
		return gwtypes.Double, true
	case *Currency:
		return gwtypes.Currency, true
	case *String:
		return gwtypes.String, true
	case *Record:
		return gwtypes.Record, true
	}
	return 0, false
}

// Bool builds the BASIC truth value, -1 or 0
func Bool(b bool) *Integer {
	if b {
		return &Integer{Value: -1}
	}
	return &Integer{Value: 0}
}
