package ast

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/btree"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
)

// Step is one level of a Path: which sequence of the enclosing
// container, and which statement inside that sequence.
// At the first level Seq is always 0, the routine's root sequence.
type Step struct {
	Seq  int
	Stmt int
}

// Path addresses a statement inside a routine, outermost step first.
// The last step may point one past the end of its sequence, which
// means "continue after the last statement".
type Path []Step

func (p Path) String() string {
	var out bytes.Buffer
	for i, st := range p {
		if i > 0 {
			out.WriteString("/")
		}
		out.WriteString(fmt.Sprintf("%d:%d", st.Seq, st.Stmt))
	}
	return out.String()
}

// Clone returns a copy that does not share storage with p
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	c := make(Path, len(p))
	copy(c, p)
	return c
}

// Equal compares two paths step by step
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Next is the position right after the statement p addresses
func (p Path) Next() Path {
	n := p.Clone()
	if len(n) > 0 {
		n[len(n)-1].Stmt++
	}
	return n
}

// Child extends p into sequence seq of the container p addresses
func (p Path) Child(seq, stmt int) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, Step{Seq: seq, Stmt: stmt})
}

// RoutineKind tells module code from procedures
type RoutineKind int

const (
	MainModule RoutineKind = iota
	SubRoutine
	FunctionRoutine
	DefFnRoutine
)

func (rk RoutineKind) String() string {
	return []string{"MODULE", "SUB", "FUNCTION", "DEF"}[rk]
}

// Param is a declared procedure parameter
type Param struct {
	Name   *Identifier
	Array  bool
	AsType string
}

// Local is one entry of a routine's variable table
type Local struct {
	Name  string
	Type  gwtypes.Spec
	Array bool
}

// Routine is a compiled SUB, FUNCTION, DEF FN or the main module.
// It is built once and shared read-only by every invocation.
type Routine struct {
	Token  token.Token
	Name   string
	Kind   RoutineKind
	Params []*Param
	AsType string // FUNCTION ... AS type
	Body   *Sequence

	// filled in by the resolver
	Locals     []Local
	Result     int // slot that receives a FUNCTION's value, -1 if none
	ResultType gwtypes.Spec
	Labels     map[string]Path
	Lines      *LineTable
}

// Resolved reports if the label tables have been built
func (r *Routine) Resolved() bool {
	return r.Labels != nil
}

// Label looks up a label or line number, case insensitive
func (r *Routine) Label(name string) (Path, bool) {
	p, ok := r.Labels[strings.ToUpper(name)]
	return p, ok
}

// StatementAt walks p from the root sequence.
// A path ending one past the last statement is valid and yields nil.
func (r *Routine) StatementAt(p Path) (Statement, bool) {
	if len(p) == 0 || p[0].Seq != 0 {
		return nil, false
	}
	seq := r.Body
	for k, st := range p {
		if k > 0 {
			prev := seq.Statements[p[k-1].Stmt]
			c, ok := prev.(Container)
			if !ok || st.Seq < 0 || st.Seq >= c.SeqCount() {
				return nil, false
			}
			seq = c.Seq(st.Seq)
		}
		if st.Stmt < 0 || st.Stmt > seq.Len() {
			return nil, false
		}
		if st.Stmt == seq.Len() {
			return nil, k == len(p)-1
		}
	}
	return seq.Statements[p[len(p)-1].Stmt], true
}

func (r *Routine) String() string {
	var out bytes.Buffer
	if r.Kind != MainModule {
		out.WriteString(r.Kind.String() + " " + r.Name)
		if len(r.Params) > 0 {
			params := []string{}
			for _, p := range r.Params {
				s := p.Name.Name
				if p.Array {
					s += "()"
				}
				if len(p.AsType) > 0 {
					s += " AS " + p.AsType
				}
				params = append(params, s)
			}
			out.WriteString("(" + strings.Join(params, ", ") + ")")
		}
		out.WriteString("\n")
	}
	out.WriteString(indent(r.Body))
	if r.Kind != MainModule {
		out.WriteString("END " + r.Kind.String() + "\n")
	}
	return out.String()
}

// Program holds the root of the AST (Abstract Syntax Tree)
type Program struct {
	Main     *Routine
	Routines map[string]*Routine // by upper case name
	Types    map[string]*gwtypes.RecordDef
	Data     []Expression // every DATA constant in source order
}

// NewProgram builds an empty program around a main module body
func NewProgram(body *Sequence) *Program {
	return &Program{
		Main:     &Routine{Name: "MAIN", Kind: MainModule, Body: body, Result: -1},
		Routines: map[string]*Routine{},
		Types:    map[string]*gwtypes.RecordDef{},
	}
}

// TokenLiteral returns string representation of the program
func (p *Program) TokenLiteral() string { return "QBasic" }

// AddRoutine registers a procedure, false if the name is taken
func (p *Program) AddRoutine(r *Routine) bool {
	name := strings.ToUpper(r.Name)
	if _, dup := p.Routines[name]; dup {
		return false
	}
	p.Routines[name] = r
	return true
}

// Routine finds a procedure by name
func (p *Program) Routine(name string) (*Routine, bool) {
	r, ok := p.Routines[strings.ToUpper(name)]
	return r, ok
}

// AddType registers a TYPE definition, false if the name is taken
func (p *Program) AddType(rd *gwtypes.RecordDef) bool {
	name := strings.ToUpper(rd.Name)
	if _, dup := p.Types[name]; dup {
		return false
	}
	p.Types[name] = rd
	return true
}

func (p *Program) String() string {
	var out bytes.Buffer
	out.WriteString(p.Main.String())
	for _, r := range p.Routines {
		out.WriteString(r.String())
	}
	return out.String()
}

type lineEntry struct {
	line int
	path Path
}

// LineTable maps line numbers to statement paths in line order
type LineTable struct {
	tree *btree.BTreeG[lineEntry]
}

// NewLineTable creates an empty table
func NewLineTable() *LineTable {
	return &LineTable{tree: btree.NewG(8, func(a, b lineEntry) bool { return a.line < b.line })}
}

// Add records a line, false if it already exists
func (lt *LineTable) Add(line int, p Path) bool {
	if _, found := lt.tree.Get(lineEntry{line: line}); found {
		return false
	}
	lt.tree.ReplaceOrInsert(lineEntry{line: line, path: p})
	return true
}

// Find returns the path of an exact line number
func (lt *LineTable) Find(line int) (Path, bool) {
	le, ok := lt.tree.Get(lineEntry{line: line})
	return le.path, ok
}

// Ceiling returns the first line at or after line
func (lt *LineTable) Ceiling(line int) (int, Path, bool) {
	var found lineEntry
	ok := false
	lt.tree.AscendGreaterOrEqual(lineEntry{line: line}, func(le lineEntry) bool {
		found = le
		ok = true
		return false
	})
	return found.line, found.path, ok
}

// Lines lists every line number in ascending order
func (lt *LineTable) Lines() []int {
	lines := make([]int, 0, lt.tree.Len())
	lt.tree.Ascend(func(le lineEntry) bool {
		lines = append(lines, le.line)
		return true
	})
	return lines
}

// Len tells caller how many lines I have
func (lt *LineTable) Len() int {
	return lt.tree.Len()
}
