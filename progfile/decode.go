package progfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/token"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// decoder walks the YAML tree, the first problem found is kept in err
type decoder struct {
	err  error
	line int // position given to the tokens of the current statement
	col  int
}

func (d *decoder) failf(line int, format string, args ...any) {
	if d.err == nil {
		d.err = &ImageError{Line: line, Msg: fmt.Sprintf(format, args...)}
	}
}

// entry is one statement or expression mapping, the first key names it
type entry struct {
	node   *yaml.Node
	kw     string
	arg    *yaml.Node
	fields map[string]*yaml.Node
}

func (d *decoder) entry(n *yaml.Node) *entry {
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		d.failf(n.Line, "expected a mapping")
		return nil
	}
	e := &entry{
		node:   n,
		kw:     strings.ToLower(n.Content[0].Value),
		arg:    n.Content[1],
		fields: map[string]*yaml.Node{},
	}
	for i := 2; i+1 < len(n.Content); i += 2 {
		e.fields[strings.ToLower(n.Content[i].Value)] = n.Content[i+1]
	}
	return e
}

// field returns the named field, nil when it is missing or null
func (e *entry) field(name string) *yaml.Node {
	n, ok := e.fields[name]
	if !ok || isNull(n) {
		return nil
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func (d *decoder) tok(tt token.TokenType, lit string) token.Token {
	return token.Token{Type: tt, Literal: lit, Line: d.line, Col: d.col}
}

func ident(name string, tk token.Token) *ast.Identifier {
	tk.Type, tk.Literal = token.IDENT, name
	return &ast.Identifier{Token: tk, Name: name}
}

func (d *decoder) block(n *yaml.Node) *ast.Sequence {
	seq := &ast.Sequence{}
	if isNull(n) {
		return seq
	}
	if n.Kind != yaml.SequenceNode {
		d.failf(n.Line, "expected a list of statements")
		return seq
	}
	for _, item := range n.Content {
		if st := d.statement(item); st != nil {
			seq.Statements = append(seq.Statements, st)
		}
	}
	return seq
}

func (d *decoder) list(n *yaml.Node) []*yaml.Node {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return []*yaml.Node{n}
	}
	return n.Content
}

func (d *decoder) flag(n *yaml.Node) bool {
	if isNull(n) {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		d.failf(n.Line, "expected true or false, got %q", n.Value)
	}
	return b
}

func (d *decoder) text(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.failf(n.Line, "expected a name")
	}
	return n.Value
}

// position moves the statement position to at, or keeps the line
// of the most recent line number
func (d *decoder) position(e *entry) {
	d.col = 0
	at, ok := e.fields["at"]
	if !ok {
		return
	}
	var pos []int
	if err := at.Decode(&pos); err != nil || len(pos) == 0 {
		d.failf(at.Line, "at needs [line, col]")
		return
	}
	d.line = pos[0]
	if len(pos) > 1 {
		d.col = pos[1]
	}
}

func (d *decoder) statement(n *yaml.Node) ast.Statement {
	// bare keywords such as cls or stop
	if n.Kind == yaml.ScalarNode {
		n = &yaml.Node{Kind: yaml.MappingNode, Line: n.Line, Content: []*yaml.Node{n, {}}}
	}
	e := d.entry(n)
	if e == nil {
		return nil
	}
	d.position(e)
	tk := d.tok(token.LookupIdent(strings.Fields(e.kw + " x")[0]), strings.ToUpper(e.kw))

	switch e.kw {
	case "label":
		tk.Type = token.LABEL
		return &ast.LabelStatement{Token: tk, Name: d.text(e.arg)}

	case "lineno":
		v, err := strconv.ParseInt(e.arg.Value, 10, 32)
		if err != nil || v < 0 {
			d.failf(e.arg.Line, "bad line number %q", e.arg.Value)
		}
		if _, ok := e.fields["at"]; !ok {
			d.line = int(v)
		}
		tk.Type, tk.Literal, tk.Line = token.LINENUM, e.arg.Value, d.line
		return &ast.LineNumStmt{Token: tk, Value: int32(v)}

	case "goto":
		return &ast.GotoStatement{Token: tk, Label: d.text(e.arg)}

	case "gosub":
		return &ast.GosubStatement{Token: tk, Label: d.text(e.arg)}

	case "return":
		return &ast.ReturnStatement{Token: tk, Label: d.text(e.arg)}

	case "let":
		val := e.field("value")
		if val == nil {
			d.failf(e.node.Line, "let needs a value")
		}
		return &ast.LetStatement{Token: tk, Name: d.target(e.arg), Value: d.expr(val)}

	case "call":
		return &ast.CallStatement{Token: tk, Name: d.text(e.arg), Arguments: d.exprs(e.field("args"))}

	case "on":
		return d.onGoto(e, tk)

	case "on error":
		return d.onError(e, tk)

	case "resume":
		return d.resume(e, tk)

	case "error":
		return &ast.ErrorStatement{Token: tk, Code: d.expr(e.arg)}

	case "exit":
		return d.exit(e, tk)

	case "end", "system":
		return &ast.EndStatement{Token: tk, Code: d.expr(e.arg), System: e.kw == "system"}

	case "stop":
		return &ast.StopStatement{Token: tk}

	case "clear":
		return &ast.ClearCommand{Token: tk}

	case "dim", "redim":
		return d.dim(e, tk)

	case "erase":
		st := &ast.EraseStatement{Token: tk}
		for _, a := range d.list(e.arg) {
			st.Arrays = append(st.Arrays, ident(strings.TrimSuffix(d.text(a), "()"), tk))
		}
		return st

	case "swap":
		pair := d.list(e.arg)
		if len(pair) != 2 {
			d.failf(e.node.Line, "swap needs two variables")
			return nil
		}
		return &ast.SwapStatement{Token: tk, Left: d.target(pair[0]), Right: d.target(pair[1])}

	case "data":
		return &ast.DataStatement{Token: tk, Consts: d.exprs(e.arg)}

	case "read":
		return &ast.ReadStatement{Token: tk, Vars: d.targets(e.arg)}

	case "restore":
		return &ast.RestoreStatement{Token: tk, Label: d.text(e.arg)}
	}

	if st := d.consoleStatement(e, tk); st != nil {
		return st
	}
	if st := d.blockStatement(e, tk); st != nil {
		return st
	}
	if st := d.graphicsStatement(e, tk); st != nil {
		return st
	}
	if d.err == nil {
		d.failf(n.Line, "unknown statement %q", e.kw)
	}
	return nil
}

func (d *decoder) onGoto(e *entry, tk token.Token) ast.Statement {
	st := &ast.OnGotoStatement{Token: tk, Selector: d.expr(e.arg)}
	targets := e.field("goto")
	if targets == nil {
		targets, st.Gosub = e.field("gosub"), true
	}
	if targets == nil {
		d.failf(e.node.Line, "on needs goto or gosub")
		return nil
	}
	for _, l := range d.list(targets) {
		st.Labels = append(st.Labels, d.text(l))
	}
	return st
}

// onError takes next, 0 or a label
func (d *decoder) onError(e *entry, tk token.Token) ast.Statement {
	st := &ast.OnErrorStatement{Token: tk, Local: d.flag(e.field("local"))}
	switch target := d.text(e.arg); strings.ToLower(target) {
	case "next":
		st.Action = ast.HandlerResumeNext
	case "0", "":
		st.Action = ast.HandlerDisable
	default:
		st.Action, st.Label = ast.HandlerGoto, target
	}
	return st
}

func (d *decoder) resume(e *entry, tk token.Token) ast.Statement {
	st := &ast.ResumeStatement{Token: tk}
	switch target := d.text(e.arg); strings.ToLower(target) {
	case "", "0":
		st.Mode = ast.ResumeRetry
	case "next":
		st.Mode = ast.ResumeNext
	default:
		st.Mode, st.Label = ast.ResumeLabel, target
	}
	return st
}

var exitKinds = map[string]ast.ExitKind{
	"do":       ast.ExitDo,
	"for":      ast.ExitFor,
	"sub":      ast.ExitSub,
	"function": ast.ExitFunction,
	"def":      ast.ExitDef,
}

func (d *decoder) exit(e *entry, tk token.Token) ast.Statement {
	kind, ok := exitKinds[strings.ToLower(d.text(e.arg))]
	if !ok {
		d.failf(e.node.Line, "cannot exit %q", e.arg.Value)
		return nil
	}
	return &ast.ExitStatement{Token: tk, Kind: kind}
}

// dim takes a name or a list of names and {name, bounds, as} mappings,
// a bound is an upper limit or a [lower, upper] pair
func (d *decoder) dim(e *entry, tk token.Token) ast.Statement {
	st := &ast.DimStatement{Token: tk, Redim: e.kw == "redim", Shared: d.flag(e.field("shared"))}
	for _, item := range d.list(e.arg) {
		if item.Kind == yaml.ScalarNode {
			st.Vars = append(st.Vars, &ast.DimVar{Name: ident(item.Value, tk)})
			continue
		}

		ve := d.entry(item)
		if ve == nil {
			return nil
		}
		dv := &ast.DimVar{Name: ident(d.text(ve.fields["name"]), tk), AsType: d.text(ve.fields["as"])}
		if len(dv.Name.Name) == 0 {
			d.failf(item.Line, "dim entry without a name")
		}
		for _, b := range d.list(ve.field("bounds")) {
			if b.Kind == yaml.SequenceNode {
				if len(b.Content) != 2 {
					d.failf(b.Line, "a bound is upper or [lower, upper]")
					continue
				}
				dv.Bounds = append(dv.Bounds, ast.Bound{Lower: d.expr(b.Content[0]), Upper: d.expr(b.Content[1])})
				continue
			}
			dv.Bounds = append(dv.Bounds, ast.Bound{Upper: d.expr(b)})
		}
		st.Vars = append(st.Vars, dv)
	}
	return st
}

func (d *decoder) consoleStatement(e *entry, tk token.Token) ast.Statement {
	switch e.kw {
	case "print":
		st := &ast.PrintStatement{Token: tk, Items: d.exprs(e.arg)}
		if seps := e.field("seps"); seps != nil {
			for _, s := range d.list(seps) {
				st.Separators = append(st.Separators, s.Value)
			}
			if len(st.Separators) != len(st.Items) {
				d.failf(seps.Line, "print has %d items and %d separators", len(st.Items), len(st.Separators))
			}
			return st
		}
		for i := range st.Items {
			sep := token.SEMICOLON
			if i == len(st.Items)-1 {
				sep = ""
			}
			st.Separators = append(st.Separators, sep)
		}
		return st

	case "locate":
		pos := d.exprs(e.arg)
		st := &ast.LocateStatement{Token: tk}
		if len(pos) > 0 {
			st.Row = pos[0]
		}
		if len(pos) > 1 {
			st.Col = pos[1]
		}
		return st

	case "color":
		return &ast.ColorStatement{Token: tk, Parms: d.exprs(e.arg)}

	case "cls":
		return &ast.ClsStatement{Token: tk}

	case "beep":
		return &ast.BeepStatement{Token: tk}

	case "input":
		return &ast.InputStatement{
			Token:        tk,
			Prompt:       d.text(e.field("prompt")),
			QuestionMark: d.flag(e.field("question")),
			Vars:         d.targets(e.arg),
		}

	case "line input":
		return &ast.LineInputStatement{Token: tk, Prompt: d.text(e.field("prompt")), Var: d.target(e.arg)}

	case "sleep":
		return &ast.SleepStatement{Token: tk, Seconds: d.expr(e.arg)}

	case "randomize":
		return &ast.RandomizeStatement{Token: tk, Seed: d.expr(e.arg)}
	}
	return nil
}

func (d *decoder) blockStatement(e *entry, tk token.Token) ast.Statement {
	switch e.kw {
	case "if":
		st := &ast.IfStatement{Token: tk}
		st.Conditions = append(st.Conditions, d.expr(e.arg))
		st.Bodies = append(st.Bodies, d.block(e.field("then")))
		for _, ei := range d.list(e.field("elseif")) {
			ee := d.entry(ei)
			if ee == nil {
				return nil
			}
			st.Conditions = append(st.Conditions, d.expr(ee.arg))
			st.Bodies = append(st.Bodies, d.block(ee.field("then")))
		}
		if els, ok := e.fields["else"]; ok {
			st.Bodies = append(st.Bodies, d.block(els))
		}
		return st

	case "do":
		st := &ast.DoStatement{Token: tk, Body: d.block(e.arg), TestFirst: true}
		if cond := e.field("while"); cond != nil {
			st.Condition = d.expr(cond)
		}
		if cond := e.field("until"); cond != nil {
			st.Condition, st.Until = d.expr(cond), true
		}
		switch strings.ToLower(d.text(e.field("test"))) {
		case "", "first":
		case "last":
			st.TestFirst = false
		default:
			d.failf(e.node.Line, "test is first or last")
		}
		return st

	case "for":
		from, to := e.field("from"), e.field("to")
		if from == nil || to == nil {
			d.failf(e.node.Line, "for needs from and to")
			return nil
		}
		return &ast.ForStatement{
			Token:   tk,
			Counter: ident(d.text(e.arg), tk),
			Start:   d.expr(from),
			End:     d.expr(to),
			Step:    d.expr(e.field("step")),
			Body:    d.block(e.field("body")),
		}

	case "select":
		st := &ast.SelectStatement{Token: tk, Subject: d.expr(e.arg)}
		for _, cn := range d.list(e.field("cases")) {
			ce := d.entry(cn)
			if ce == nil {
				return nil
			}
			cc := &ast.CaseClause{Token: d.tok(token.CASE, "CASE")}
			switch ce.kw {
			case "else":
				cc.Else = true
				st.Bodies = append(st.Bodies, d.block(ce.arg))
			case "case":
				for _, t := range d.list(ce.arg) {
					cc.Tests = append(cc.Tests, d.caseTest(t))
				}
				st.Bodies = append(st.Bodies, d.block(ce.field("body")))
			default:
				d.failf(cn.Line, "expected case or else")
				return nil
			}
			st.Cases = append(st.Cases, cc)
		}
		return st
	}
	return nil
}

// caseTest is an expression, {to: [lo, hi]} or {is: [op, value]}
func (d *decoder) caseTest(n *yaml.Node) ast.CaseTest {
	if n.Kind == yaml.MappingNode && len(n.Content) == 2 {
		pair := n.Content[1]
		switch strings.ToLower(n.Content[0].Value) {
		case "to":
			if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
				d.failf(n.Line, "to needs [low, high]")
				return ast.CaseTest{}
			}
			return ast.CaseTest{Op: "TO", Value: d.expr(pair.Content[0]), Upper: d.expr(pair.Content[1])}
		case "is":
			if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
				d.failf(n.Line, "is needs [relation, value]")
				return ast.CaseTest{}
			}
			op := pair.Content[0].Value
			switch op {
			case token.EQ, token.NOT_EQ, token.LT, token.GT, token.LTE, token.GTE:
			default:
				d.failf(n.Line, "%q is not a relation", op)
			}
			return ast.CaseTest{Op: op, Value: d.expr(pair.Content[1])}
		}
	}
	return ast.CaseTest{Op: token.EQ, Value: d.expr(n)}
}

// coords decodes a fixed length list of expressions
func (d *decoder) coords(e *entry, n int) []ast.Expression {
	xs := d.exprs(e.arg)
	if len(xs) != n {
		d.failf(e.node.Line, "%s needs %d coordinates", e.kw, n)
		return make([]ast.Expression, n)
	}
	return xs
}

func (d *decoder) graphicsStatement(e *entry, tk token.Token) ast.Statement {
	switch e.kw {
	case "screen":
		return &ast.ScreenStatement{Token: tk, Mode: d.expr(e.arg)}

	case "pset":
		xy := d.coords(e, 2)
		return &ast.PsetStatement{Token: tk, X: xy[0], Y: xy[1], Color: d.expr(e.field("color"))}

	case "line":
		xy := d.coords(e, 4)
		fill := d.flag(e.field("fill"))
		return &ast.LineStatement{
			Token: tk,
			X1:    xy[0],
			Y1:    xy[1],
			X2:    xy[2],
			Y2:    xy[3],
			Color: d.expr(e.field("color")),
			Box:   fill || d.flag(e.field("box")),
			Fill:  fill,
		}

	case "circle":
		xyr := d.coords(e, 3)
		return &ast.CircleStatement{
			Token:  tk,
			X:      xyr[0],
			Y:      xyr[1],
			Radius: xyr[2],
			Color:  d.expr(e.field("color")),
			Start:  d.expr(e.field("start")),
			End:    d.expr(e.field("end")),
			Aspect: d.expr(e.field("aspect")),
		}

	case "paint":
		xy := d.coords(e, 2)
		return &ast.PaintStatement{Token: tk, X: xy[0], Y: xy[1], Fill: d.expr(e.field("fill")), Border: d.expr(e.field("border"))}

	case "get":
		xy := d.coords(e, 4)
		return &ast.GetStatement{Token: tk, X1: xy[0], Y1: xy[1], X2: xy[2], Y2: xy[3], Array: d.array(e.field("array"), tk)}

	case "put":
		xy := d.coords(e, 2)
		return &ast.PutStatement{Token: tk, X: xy[0], Y: xy[1], Array: d.array(e.field("array"), tk), Action: strings.ToUpper(d.text(e.field("action")))}
	}
	return nil
}

func (d *decoder) array(n *yaml.Node, tk token.Token) *ast.Identifier {
	name := strings.TrimSuffix(d.text(n), "()")
	if len(name) == 0 {
		d.failf(d.line, "missing array")
	}
	return ident(name, tk)
}

func (d *decoder) exprs(n *yaml.Node) []ast.Expression {
	var exps []ast.Expression
	for _, item := range d.list(n) {
		exps = append(exps, d.expr(item))
	}
	return exps
}

func (d *decoder) targets(n *yaml.Node) []ast.Assignable {
	var vars []ast.Assignable
	for _, item := range d.list(n) {
		vars = append(vars, d.target(item))
	}
	return vars
}

func (d *decoder) target(n *yaml.Node) ast.Assignable {
	if a, ok := d.expr(n).(ast.Assignable); ok {
		return a
	}
	d.failf(n.Line, "cannot assign to %q", n.Value)
	return nil
}

// operators maps image keys to operator tokens
var operators = map[string]string{
	"+": token.PLUS, "-": token.MINUS, "*": token.ASTERISK, "/": token.SLASH,
	"\\": token.BSLASH, "^": token.CARET, "mod": token.MOD,
	"=": token.EQ, "<>": token.NOT_EQ, "<": token.LT, ">": token.GT, "<=": token.LTE, ">=": token.GTE,
	"and": token.AND, "or": token.OR, "xor": token.XOR, "eqv": token.EQV, "imp": token.IMP,
}

func (d *decoder) expr(n *yaml.Node) ast.Expression {
	if isNull(n) {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(n)
	case yaml.MappingNode:
		return d.compound(n)
	}
	d.failf(n.Line, "expected an expression")
	return nil
}

// scalar reads plain numbers and variable names
func (d *decoder) scalar(n *yaml.Node) ast.Expression {
	switch n.Tag {
	case "!!int":
		v, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "_", ""), 0, 64)
		if err != nil {
			d.failf(n.Line, "bad number %q", n.Value)
			return nil
		}
		return intLiteral(d.tok(token.INT, n.Value), v)

	case "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			d.failf(n.Line, "bad number %q", n.Value)
			return nil
		}
		if significant(n.Value) <= 7 {
			return &ast.FloatSingleLiteral{Token: d.tok(token.FLOAT, n.Value), Value: float32(v)}
		}
		return &ast.FloatDoubleLiteral{Token: d.tok(token.FLOATD, n.Value), Value: v}

	case "!!bool":
		v := int16(0)
		if d.flag(n) {
			v = -1
		}
		return &ast.IntegerLiteral{Token: d.tok(token.INT, n.Value), Value: v}
	}

	if len(n.Value) == 0 {
		d.failf(n.Line, "empty name")
		return nil
	}
	if name, ok := strings.CutSuffix(n.Value, "()"); ok {
		id := ident(name, d.tok(token.IDENT, name))
		id.Slot.Array = true
		return id
	}
	return ident(n.Value, d.tok(token.IDENT, n.Value))
}

// intLiteral picks the narrowest type that holds v
func intLiteral(tk token.Token, v int64) ast.Expression {
	switch {
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return &ast.IntegerLiteral{Token: tk, Value: int16(v)}
	case v >= math.MinInt32 && v <= math.MaxInt32:
		tk.Type = token.INTD
		return &ast.DblIntegerLiteral{Token: tk, Value: int32(v)}
	}
	tk.Type = token.FLOATD
	return &ast.FloatDoubleLiteral{Token: tk, Value: float64(v)}
}

// significant counts the mantissa digits of a number, leading
// zeros don't count
func significant(num string) int {
	mant, _, _ := strings.Cut(strings.ToLower(num), "e")
	digits := strings.TrimLeft(strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mant), "0")
	if strings.Contains(mant, ".") {
		return len(digits)
	}
	return len(strings.TrimRight(digits, "0"))
}

// compound reads the typed literals, operators, calls and element references
func (d *decoder) compound(n *yaml.Node) ast.Expression {
	e := d.entry(n)
	if e == nil {
		return nil
	}
	lit := e.arg.Value

	if op, ok := operators[e.kw]; ok {
		if e.arg.Kind != yaml.SequenceNode || len(e.arg.Content) != 2 {
			d.failf(n.Line, "%s needs two operands", e.kw)
			return nil
		}
		return &ast.InfixExpression{
			Token:    d.tok(token.TokenType(op), op),
			Left:     d.expr(e.arg.Content[0]),
			Operator: op,
			Right:    d.expr(e.arg.Content[1]),
		}
	}

	switch e.kw {
	case "str":
		return &ast.StringLiteral{Token: d.tok(token.STRING, lit), Value: lit}

	case "int", "lng":
		bits := 16
		if e.kw == "lng" {
			bits = 32
		}
		v, err := strconv.ParseInt(lit, 10, bits)
		if err != nil {
			d.failf(n.Line, "bad %s %q", e.kw, lit)
			return nil
		}
		if bits == 16 {
			return &ast.IntegerLiteral{Token: d.tok(token.INT, lit), Value: int16(v)}
		}
		return &ast.DblIntegerLiteral{Token: d.tok(token.INTD, lit), Value: int32(v)}

	case "sgl", "dbl":
		bits := 32
		if e.kw == "dbl" {
			bits = 64
		}
		v, err := strconv.ParseFloat(strings.Replace(strings.ToLower(lit), "d", "e", 1), bits)
		if err != nil {
			d.failf(n.Line, "bad %s %q", e.kw, lit)
			return nil
		}
		if bits == 32 {
			return &ast.FloatSingleLiteral{Token: d.tok(token.FLOAT, lit), Value: float32(v)}
		}
		return &ast.FloatDoubleLiteral{Token: d.tok(token.FLOATD, lit), Value: v}

	case "cur":
		v, err := decimal.NewFromString(lit)
		if err != nil {
			d.failf(n.Line, "bad currency %q", lit)
			return nil
		}
		return &ast.CurrencyLiteral{Token: d.tok(token.CURRENCY, lit), Value: v}

	case "neg", "not":
		op := token.MINUS
		if e.kw == "not" {
			op = token.NOT
		}
		return &ast.PrefixExpression{Token: d.tok(token.TokenType(op), op), Operator: op, Right: d.expr(e.arg)}

	case "group":
		return &ast.GroupedExpression{Token: d.tok(token.LPAREN, "("), Exp: d.expr(e.arg)}

	case "call":
		return &ast.CallExpression{Token: d.tok(token.IDENT, lit), Name: lit, Arguments: d.exprs(e.field("args"))}

	case "index":
		return &ast.IndexExpression{
			Token:   d.tok(token.LPAREN, "("),
			Array:   ident(lit, d.tok(token.IDENT, lit)),
			Indices: d.exprs(e.field("subs")),
		}

	case "field":
		of := e.field("of")
		if of == nil {
			d.failf(n.Line, "field %s needs of", lit)
			return nil
		}
		return &ast.FieldExpression{Token: d.tok(token.PERIOD, "."), Base: d.target(of), Name: lit}
	}

	d.failf(n.Line, "unknown expression %q", e.kw)
	return nil
}
