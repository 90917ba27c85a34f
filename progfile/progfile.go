// Package progfile reads program images. An image is the statement
// tree an external front end built from BASIC source, written as YAML.
//
//	program: demo
//	types:
//	  - type: Point
//	    fields: [{name: x, as: INTEGER}, {name: tag, as: STRING * 4}]
//	main:
//	  - let: total#
//	    value: {call: fact#, args: [10]}
//	  - print: [{str: "10! ="}, total#]
//	procedures:
//	  - function: fact#
//	    params: [n%]
//	    body: [...]
package progfile

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/compile"
	"github.com/navionguy/qbasic/gwtypes"
	"github.com/navionguy/qbasic/token"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ImageError reports a malformed image
type ImageError struct {
	Line int // line in the image file
	Msg  string
}

func (ie *ImageError) Error() string {
	return fmt.Sprintf("program image line %d: %s", ie.Line, ie.Msg)
}

type image struct {
	Program    string      `yaml:"program"`
	Types      []typeImage `yaml:"types"`
	Main       yaml.Node   `yaml:"main"`
	Procedures []procImage `yaml:"procedures"`
}

type fieldImage struct {
	Name string `yaml:"name"`
	As   string `yaml:"as"`
}

type typeImage struct {
	Type   string       `yaml:"type"`
	Fields []fieldImage `yaml:"fields"`
	At     []int        `yaml:"at"`
}

type procImage struct {
	Sub      string      `yaml:"sub"`
	Function string      `yaml:"function"`
	Def      string      `yaml:"def"`
	Params   []yaml.Node `yaml:"params"`
	As       string      `yaml:"as"`
	At       []int       `yaml:"at"`
	Body     yaml.Node   `yaml:"body"`
}

// HTTPClient is the part of http.Client that Fetch uses
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// Load decodes an image and resolves it, the program is ready to run
func Load(r io.Reader, opts compile.Options) (*ast.Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var img image
	if err := yaml.Unmarshal(src, &img); err != nil {
		return nil, err
	}

	prog, err := build(&img)
	if err != nil {
		return nil, err
	}
	if err := compile.Resolve(prog, opts); err != nil {
		return nil, err
	}

	log.Debug().Str("program", img.Program).Int("procedures", len(prog.Routines)).
		Int("statements", prog.Main.Body.Len()).Msg("image loaded")
	return prog, nil
}

// LoadFile loads the image stored at path
func LoadFile(path string, opts compile.Options) (*ast.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts)
}

// Fetch downloads an image from a program server
func Fetch(cl HTTPClient, url string, opts compile.Options) (*ast.Program, error) {
	rsp, err := cl.Get(url)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, rsp.Status)
	}
	return Load(rsp.Body, opts)
}

// build turns the decoded image into an unresolved program
func build(img *image) (*ast.Program, error) {
	d := &decoder{}
	prog := ast.NewProgram(d.block(&img.Main))

	for _, ti := range img.Types {
		rd := &gwtypes.RecordDef{Name: ti.Type}
		for _, fi := range ti.Fields {
			rd.Fields = append(rd.Fields, gwtypes.FieldDef{Name: fi.Name, Type: d.fieldType(prog, fi)})
		}
		if !prog.AddType(rd) {
			d.failf(atLine(ti.At), "type %s defined twice", ti.Type)
		}
	}

	for i := range img.Procedures {
		r := d.routine(&img.Procedures[i])
		if r != nil && !prog.AddRoutine(r) {
			d.failf(r.Token.Line, "procedure %s defined twice", r.Name)
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return prog, nil
}

func atLine(at []int) int {
	if len(at) > 0 {
		return at[0]
	}
	return 0
}

// fieldType works out the type of a TYPE member, members always
// name their type
func (d *decoder) fieldType(prog *ast.Program, fi fieldImage) gwtypes.Spec {
	up := strings.ToUpper(strings.TrimSpace(fi.As))
	if strings.HasPrefix(up, "STRING") && strings.Contains(up, "*") {
		n, err := strconv.Atoi(strings.TrimSpace(up[strings.Index(up, "*")+1:]))
		if err != nil || n < 1 {
			d.failf(0, "bad string length in %s", fi.As)
		}
		return gwtypes.Spec{Kind: gwtypes.String, Fixed: n}
	}
	if k, ok := gwtypes.KindByName(up); ok {
		return gwtypes.Scalar(k)
	}
	if rd, ok := prog.Types[up]; ok {
		return gwtypes.Spec{Kind: gwtypes.Record, Record: rd}
	}
	d.failf(0, "member %s has unknown type %q", fi.Name, fi.As)
	return gwtypes.Scalar(gwtypes.Single)
}

func (d *decoder) routine(pi *procImage) *ast.Routine {
	r := &ast.Routine{AsType: pi.As}
	var kw token.TokenType
	switch {
	case len(pi.Sub) > 0:
		r.Name, r.Kind, kw = pi.Sub, ast.SubRoutine, token.SUB
	case len(pi.Function) > 0:
		r.Name, r.Kind, kw = pi.Function, ast.FunctionRoutine, token.FUNCTION
	case len(pi.Def) > 0:
		r.Name, r.Kind, kw = pi.Def, ast.DefFnRoutine, token.DEF
	default:
		d.failf(pi.Body.Line, "procedure needs sub, function or def")
		return nil
	}

	r.Token = token.Token{Type: kw, Literal: r.Name, Line: atLine(pi.At)}
	if len(pi.At) > 1 {
		r.Token.Col = pi.At[1]
	}

	for i := range pi.Params {
		r.Params = append(r.Params, d.param(&pi.Params[i], r.Token))
	}
	r.Body = d.block(&pi.Body)
	return r
}

// param is "name", "name()" or {name: p, as: Point}
func (d *decoder) param(n *yaml.Node, tk token.Token) *ast.Param {
	p := &ast.Param{}
	name := n.Value
	if n.Kind == yaml.MappingNode {
		var pi fieldImage
		if err := n.Decode(&pi); err != nil {
			d.failf(n.Line, "bad parameter: %v", err)
		}
		name, p.AsType = pi.Name, pi.As
	}
	if strings.HasSuffix(name, "()") {
		name, p.Array = strings.TrimSuffix(name, "()"), true
	}
	if len(name) == 0 {
		d.failf(n.Line, "parameter without a name")
	}
	p.Name = ident(name, tk)
	return p
}
