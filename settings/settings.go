// Package settings holds the host configuration. Values come from
// Default, then an optional YAML file, then command line flags.
//
//	listen: ":8080"
//	programs: ./programs
//	trace: debug
//	handlers_target_main: true
//	yield_every: 1000
//	run_timeout: 10s
package settings

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/navionguy/qbasic/compile"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Listen     string `yaml:"listen"`   // program server address
	ProgramDir string `yaml:"programs"` // where program images are kept
	Trace      string `yaml:"trace"`    // zerolog level name

	// HandlersTargetMain lets ON ERROR GOTO in a procedure name a main module label
	HandlersTargetMain bool `yaml:"handlers_target_main"`

	YieldEvery int           `yaml:"yield_every"` // passes of an endless loop between scheduler yields
	RunTimeout time.Duration `yaml:"run_timeout"` // longest a served run may take, zero for no limit
	MaxBody    int64         `yaml:"max_body"`    // largest program image accepted by /run
}

// Default is the configuration used when nothing else is given
func Default() Settings {
	return Settings{
		Listen:             ":8080",
		ProgramDir:         "./programs",
		Trace:              "info",
		HandlersTargetMain: true,
		YieldEvery:         1000,
		RunTimeout:         10 * time.Second,
		MaxBody:            1 << 20,
	}
}

// Bind registers a flag for every setting, the current values are the defaults
func (s *Settings) Bind(fs *flag.FlagSet) {
	fs.StringVar(&s.Listen, "listen", s.Listen, "listen address")
	fs.StringVar(&s.ProgramDir, "programs", s.ProgramDir, "directory of program images")
	fs.StringVar(&s.Trace, "trace", s.Trace, "log level (trace, debug, info, warn, error)")
	fs.BoolVar(&s.HandlersTargetMain, "handlers-main", s.HandlersTargetMain, "procedure error handlers may jump to main module labels")
	fs.IntVar(&s.YieldEvery, "yield", s.YieldEvery, "endless loop passes between scheduler yields")
	fs.DurationVar(&s.RunTimeout, "timeout", s.RunTimeout, "time limit for served runs")
	fs.Int64Var(&s.MaxBody, "max-body", s.MaxBody, "largest program image accepted")
}

// Merge reads the YAML file at path over s. Flags set on the
// command line keep their values. An empty path only validates.
func (s *Settings) Merge(path string, fs *flag.FlagSet) error {
	if len(path) > 0 {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		given := map[string]string{}
		if fs != nil {
			fs.Visit(func(f *flag.Flag) { given[f.Name] = f.Value.String() })
		}

		if err := yaml.Unmarshal(src, s); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for name, val := range given {
			if err := fs.Set(name, val); err != nil {
				return err
			}
		}
	}
	return s.Validate()
}

// Validate checks the values make sense together
func (s *Settings) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(s.Trace); err != nil {
		errs = append(errs, fmt.Errorf("trace: %w", err))
	}
	if s.YieldEvery < 1 {
		errs = append(errs, fmt.Errorf("yield_every must be at least 1, not %d", s.YieldEvery))
	}
	if s.RunTimeout < 0 {
		errs = append(errs, errors.New("run_timeout is negative"))
	}
	if s.MaxBody < 1 {
		errs = append(errs, fmt.Errorf("max_body must be positive, not %d", s.MaxBody))
	}
	return errors.Join(errs...)
}

// Level is the log level named by Trace, info if it doesn't parse
func (s *Settings) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.Trace)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// CompileOptions are the resolver options these settings ask for
func (s *Settings) CompileOptions() compile.Options {
	opts := compile.DefaultOptions()
	opts.HandlersTargetMain = s.HandlersTargetMain
	return opts
}

// Yielder wraps yield so it only runs once every YieldEvery calls
func (s *Settings) Yielder(yield func()) func() {
	every, n := s.YieldEvery, 0
	if every < 1 {
		every = 1
	}
	return func() {
		n++
		if n >= every {
			n = 0
			yield()
		}
	}
}
