package settings

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qbasic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func Test_Default(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, zerolog.InfoLevel, s.Level())
	assert.True(t, s.CompileOptions().HandlersTargetMain)
}

func Test_Merge(t *testing.T) {
	cfg := writeConfig(t, `
listen: ":9090"
programs: /srv/basic
trace: debug
handlers_target_main: false
run_timeout: 2s
`)

	tests := []struct {
		name   string
		args   []string
		listen string
		trace  string
	}{
		{name: "file only", listen: ":9090", trace: "debug"},
		{name: "flag wins", args: []string{"-listen", ":7070"}, listen: ":7070", trace: "debug"},
		{name: "flag equal to default still wins", args: []string{"-trace=info"}, listen: ":9090", trace: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			s.Bind(fs)
			require.NoError(t, fs.Parse(tt.args))

			require.NoError(t, s.Merge(cfg, fs))
			assert.Equal(t, tt.listen, s.Listen)
			assert.Equal(t, tt.trace, s.Trace)
			assert.Equal(t, "/srv/basic", s.ProgramDir)
			assert.False(t, s.HandlersTargetMain)
			assert.Equal(t, 2*time.Second, s.RunTimeout)
			assert.Equal(t, 1000, s.YieldEvery)
		})
	}
}

func Test_MergeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not yaml", body: "listen: [\n"},
		{name: "bad level", body: "trace: chatty\n"},
		{name: "bad yield", body: "yield_every: 0\n"},
		{name: "bad timeout", body: "run_timeout: forever\n"},
		{name: "negative timeout", body: "run_timeout: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			assert.Error(t, s.Merge(writeConfig(t, tt.body), nil))
		})
	}

	s := Default()
	assert.Error(t, s.Merge(filepath.Join(t.TempDir(), "missing.yaml"), nil))
}

func Test_NoFile(t *testing.T) {
	s := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	s.Bind(fs)
	require.NoError(t, fs.Parse([]string{"-trace", "trace", "-yield", "5"}))

	require.NoError(t, s.Merge("", fs))
	assert.Equal(t, zerolog.TraceLevel, s.Level())
	assert.Equal(t, 5, s.YieldEvery)
}

func Test_Yielder(t *testing.T) {
	s := Default()
	s.YieldEvery = 3

	calls := 0
	y := s.Yielder(func() { calls++ })
	for i := 0; i < 10; i++ {
		y()
	}
	assert.Equal(t, 3, calls)
}
