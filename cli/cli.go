// Package cli runs one program image from the command line
package cli

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goforj/godump"
	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/evaluator"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/progfile"
	"github.com/navionguy/qbasic/settings"
	"github.com/rs/zerolog"
)

// Runner loads and runs images against a console
type Runner struct {
	Settings settings.Settings
	Console  object.Console
	Log      zerolog.Logger
	Client   progfile.HTTPClient // fetches images named by URL
	Dump     bool                // dump the program outline and the final variables
	Yield    func()              // scheduler yield, wrapped by the settings
}

// NewLogger is the human readable logger for runs from a shell
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

// Load reads the image at src, a file path or an http(s) URL
func (rn *Runner) Load(src string) (*ast.Program, error) {
	opts := rn.Settings.CompileOptions()
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		cl := rn.Client
		if cl == nil {
			cl = http.DefaultClient
		}
		return progfile.Fetch(cl, src, opts)
	}
	return progfile.LoadFile(src, opts)
}

// Run loads the image at src and runs it, the exit code comes back
// even when the program faulted
func (rn *Runner) Run(src string) (int, error) {
	prog, err := rn.Load(src)
	if err != nil {
		rn.Log.Error().Err(err).Str("image", src).Msg("load failed")
		return 1, err
	}
	if rn.Dump {
		godump.Dump(outline(prog))
	}

	env := object.NewEnvironment(prog, rn.Console)
	env.Log = rn.Log
	if rn.Yield != nil {
		env.Yield = rn.Settings.Yielder(rn.Yield)
	}

	code, err := evaluator.Run(prog, env)
	if err != nil {
		rn.Console.Println(err.Error())
	}
	if rn.Dump {
		godump.Dump(variables(env.MainFrame()))
	}
	return code, err
}

// routineOutline is what the dump shows of one procedure
type routineOutline struct {
	Name   string
	Kind   string
	Params []string
	Locals int
	Lines  []int
}

func outline(prog *ast.Program) []routineOutline {
	var out []routineOutline
	add := func(r *ast.Routine) {
		ro := routineOutline{Name: r.Name, Kind: r.Kind.String(), Locals: len(r.Locals)}
		for _, p := range r.Params {
			ro.Params = append(ro.Params, p.Name.String())
		}
		if r.Lines != nil {
			ro.Lines = r.Lines.Lines()
		}
		out = append(out, ro)
	}

	add(prog.Main)
	names := make([]string, 0, len(prog.Routines))
	for name := range prog.Routines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		add(prog.Routines[name])
	}
	return out
}

// variables shows a frame's variables by name
func variables(f *object.Frame) map[string]string {
	vars := map[string]string{}
	if f == nil {
		return vars
	}
	for i, l := range f.Routine.Locals {
		val := "<erased>"
		if i < len(f.Vars) && f.Vars[i].Value != nil {
			val = f.Vars[i].Value.Inspect()
		}
		vars[l.Name] = fmt.Sprintf("%s = %s", l.Type, val)
	}
	return vars
}
