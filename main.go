package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/gorilla/mux"
	"github.com/navionguy/qbasic/cli"
	"github.com/navionguy/qbasic/fileserv"
	"github.com/navionguy/qbasic/settings"
	"github.com/navionguy/qbasic/terminal"
	"github.com/rs/zerolog"
)

const usage = `usage: qbasic [flags] image.yaml|url
       qbasic -serve [flags]`

type options struct {
	cfg   settings.Settings
	serve bool
	dump  bool
	keys  bool
	image string
}

// parseArgs reads the command line, the config file comes in under the flags
func parseArgs(args []string, errOut io.Writer) (*options, error) {
	opts := &options{cfg: settings.Default()}

	fs := flag.NewFlagSet("qbasic", flag.ContinueOnError)
	fs.SetOutput(errOut)
	opts.cfg.Bind(fs)
	config := fs.String("config", "", "YAML settings file")
	fs.BoolVar(&opts.serve, "serve", false, "run the program server")
	fs.BoolVar(&opts.dump, "dump", false, "dump the program outline and final variables")
	fs.BoolVar(&opts.keys, "keys", false, "read keystrokes as they are typed")
	fs.Usage = func() {
		fmt.Fprintln(errOut, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := opts.cfg.Merge(*config, fs); err != nil {
		return nil, err
	}

	switch {
	case opts.serve && fs.NArg() != 0:
		return nil, errors.New("-serve takes no program image")
	case !opts.serve && fs.NArg() != 1:
		return nil, errors.New(usage)
	case !opts.serve:
		opts.image = fs.Arg(0)
	}
	return opts, nil
}

func startup(cfg settings.Settings, log zerolog.Logger) *mux.Router {
	return fileserv.New(cfg, log).Router()
}

// run is main without the exit, the result is the process exit code
func run(args []string, in io.Reader, out, errOut io.Writer) int {
	opts, err := parseArgs(args, errOut)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	log := cli.NewLogger(errOut, opts.cfg.Level())

	if opts.serve {
		log.Info().Str("listen", opts.cfg.Listen).Str("programs", opts.cfg.ProgramDir).Msg("serving programs")
		if err := fileserv.New(opts.cfg, log).ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("server stopped")
			return 1
		}
		return 0
	}

	trm := terminal.New(in, out)
	defer trm.Close()
	stop := trm.CatchInterrupts()
	defer stop()

	if opts.keys {
		if err := trm.WatchKeys(); err != nil {
			log.Warn().Err(err).Msg("keystrokes come a line at a time")
		}
	}

	rn := &cli.Runner{
		Settings: opts.cfg,
		Console:  trm,
		Log:      log,
		Dump:     opts.dump,
		Yield:    runtime.Gosched,
	}
	code, _ := rn.Run(opts.image)
	return code
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
