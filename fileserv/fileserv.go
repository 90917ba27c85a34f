// Package fileserv is the HTTP host. It hands out the program images
// kept in a directory and runs images headless, returning what they
// printed.
//
//	GET  /programs          names of the stored images
//	GET  /programs/{name}   one image
//	POST /run               run the image in the body
//	POST /run/{name}        run a stored image
//
// Lines for INPUT come from repeated input query parameters.
package fileserv

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/navionguy/qbasic/ast"
	"github.com/navionguy/qbasic/berrors"
	"github.com/navionguy/qbasic/evaluator"
	"github.com/navionguy/qbasic/object"
	"github.com/navionguy/qbasic/progfile"
	"github.com/navionguy/qbasic/settings"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const imageExt = ".yaml"

// Server answers program and run requests
type Server struct {
	cfg settings.Settings
	src fileSource
	log zerolog.Logger
	now func() time.Time
}

// RunResult is the reply to a run request
type RunResult struct {
	ID       string    `json:"id"`
	Program  string    `json:"program,omitempty"`
	Output   string    `json:"output"`
	ExitCode int       `json:"exit_code"`
	Stopped  bool      `json:"stopped,omitempty"` // ran out of time
	Error    *RunError `json:"error,omitempty"`
}

// RunError describes the fault that ended a run, or why it never started
type RunError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Routine string `json:"routine,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// New builds a server for the images in cfg.ProgramDir
func New(cfg settings.Settings, log zerolog.Logger) *Server {
	return &Server{
		cfg: cfg,
		src: fileSource{src: http.Dir(cfg.ProgramDir)},
		log: log,
		now: time.Now,
	}
}

// Router builds the routes, every request is logged
func (s *Server) Router() *mux.Router {
	rtr := mux.NewRouter()
	rtr.Use(s.logRequests)

	rtr.HandleFunc("/programs", s.listPrograms).Methods(http.MethodGet).Name("programs")
	rtr.HandleFunc("/programs/{name}", s.getProgram).Methods(http.MethodGet).Name("program")
	rtr.HandleFunc("/run", s.runPosted).Methods(http.MethodPost).Name("run")
	rtr.HandleFunc("/run/{name}", s.runStored).Methods(http.MethodPost).Name("runstored")
	return rtr
}

// ListenAndServe serves until the listener fails
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("listen", s.cfg.Listen).Str("programs", s.cfg.ProgramDir).Msg("listening")
	return http.ListenAndServe(s.cfg.Listen, s.Router())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		s.log.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", sr.status).
			Dur("elapsed", s.now().Sub(start)).Msg("request")
	})
}

// imageName turns a route name into a file name, false for names
// that try to leave the directory
func imageName(name string) (string, bool) {
	if len(name) == 0 || strings.ContainsAny(name, `/\`) || containsDotFile(name) {
		return "", false
	}
	if path.Ext(name) != imageExt {
		name += imageExt
	}
	return "/" + name, true
}

func (s *Server) listPrograms(w http.ResponseWriter, r *http.Request) {
	hfile, err := s.src.Open("/")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer hfile.Close()

	names, err := s.src.programNames(hfile)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) getProgram(w http.ResponseWriter, r *http.Request) {
	fname, ok := imageName(mux.Vars(r)["name"])
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	s.src.serveFile(w, fname, "application/yaml")
}

func (s *Server) runPosted(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBody)
	prog, err := progfile.Load(r.Body, s.cfg.CompileOptions())
	if err != nil {
		s.rejected(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, s.run("", prog, r.URL.Query()["input"]))
}

func (s *Server) runStored(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	fname, ok := imageName(name)
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	hfile, err := s.src.Open(fname)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer hfile.Close()

	prog, err := progfile.Load(hfile, s.cfg.CompileOptions())
	if err != nil {
		s.rejected(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, s.run(name, prog, r.URL.Query()["input"]))
}

// rejected answers for an image that would not load
func (s *Server) rejected(w http.ResponseWriter, name string, err error) {
	status := http.StatusBadRequest
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		status = http.StatusRequestEntityTooLarge
	}

	res := &RunResult{ID: ulid.Make().String(), Program: name, Error: &RunError{Message: err.Error()}}
	var ces berrors.CompileErrors
	if errors.As(err, &ces) && len(ces) > 0 {
		res.Error.Code = ces[0].Code
		res.Error.Routine = ces[0].Routine
		res.Error.Line = ces[0].Token.Line
	}
	s.log.Warn().Str("run", res.ID).Str("program", name).Err(err).Msg("image rejected")
	writeJSON(w, status, res)
}

// run executes prog against a console with no one at the keyboard
func (s *Server) run(name string, prog *ast.Program, input []string) *RunResult {
	res := &RunResult{ID: ulid.Make().String(), Program: name}

	con := newHeadless(input, s.now, s.cfg.RunTimeout)
	env := object.NewEnvironment(prog, con)
	env.Log = s.log.With().Str("run", res.ID).Logger()
	env.Yield = s.cfg.Yielder(runtime.Gosched)
	env.Sleep = con.sleep

	start := s.now()
	code, err := evaluator.Run(prog, env)
	res.Output, res.ExitCode, res.Stopped = con.output(), code, con.expired()

	var re *berrors.RuntimeError
	if errors.As(err, &re) {
		res.Error = &RunError{Code: re.Code, Message: re.Message, Routine: re.Routine, Line: re.Line}
	}
	s.log.Info().Str("run", res.ID).Str("program", name).Int("exit", code).Bool("stopped", res.Stopped).
		Dur("elapsed", s.now().Sub(start)).Msg("run finished")
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type fileSource struct {
	src http.FileSystem
}

// serveFile opens up the file and sends its contents
func (fs fileSource) serveFile(w http.ResponseWriter, fname string, mimetype string) {
	hfile, err := fs.Open(fname)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer hfile.Close()

	st, err := hfile.Stat()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if st.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	buf := make([]byte, int(st.Size()))
	if _, err = hfile.Read(buf); err != nil && st.Size() > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", mimetype)
	w.Write(buf)
}

// programNames lists the images in a directory, without their extension
func (fs fileSource) programNames(hfile http.File) ([]string, error) {
	files, err := hfile.Readdir(-1)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, finfo := range files {
		if finfo.IsDir() || path.Ext(finfo.Name()) != imageExt {
			continue
		}
		names = append(names, strings.TrimSuffix(finfo.Name(), imageExt))
	}
	sort.Strings(names)
	return names, nil
}

// Open is a wrapper around the Open method of the embedded FileSystem
// that refuses dot files
func (fs fileSource) Open(name string) (hFile http.File, err error) {
	if containsDotFile(name) { // If dot file, return 403 response
		return nil, os.ErrPermission
	}

	file, err := fs.src.Open(name)
	if err != nil {
		return nil, err
	}

	return dotFileHidingFile{file}, nil
}

// containsDotFile reports whether name contains a path element starting with a period.
// The name is assumed to be a delimited by forward slashes, as guaranteed
// by the http.FileSystem interface.
func containsDotFile(name string) bool {
	parts := strings.Split(name, "/")
	for _, part := range parts {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// dotFileHidingFile is the http.File use in dotFileHidingFileSystem.
// It is used to wrap the Readdirnames method of http.File so that we can
// remove files and directories that start with a period from its output.
type dotFileHidingFile struct {
	http.File
}

// Readdir is a wrapper around the Readdir method of the embedded File
// that filters out all files that start with a period in their name.
func (f dotFileHidingFile) Readdir(n int) (fis []os.FileInfo, err error) {
	files, err := f.File.Readdir(n)
	for _, file := range files { // Filters out the dot files
		if !strings.HasPrefix(file.Name(), ".") {
			fis = append(fis, file)
		}
	}
	return
}
