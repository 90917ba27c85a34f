package mocks

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
)

// MockFS is an http.FileSystem that keeps program images in memory.
// "/" opens as the directory holding all of them.
type MockFS struct {
	Images  map[string]string // image text by file name
	StatErr bool              // Stat fails
	ReadErr bool              // Read fails
	ListErr bool              // Readdir fails
	Opened  []string          // every name passed to Open
}

func (mf *MockFS) Open(name string) (http.File, error) {
	mf.Opened = append(mf.Opened, name)
	if name == "/" {
		return &MockFile{fs: mf, info: MockFI{Fname: "/", Dir: true}}, nil
	}

	base := strings.TrimPrefix(name, "/")
	text, ok := mf.Images[base]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &MockFile{fs: mf, info: MockFI{Fname: base, Ftext: text}, rdr: strings.NewReader(text)}, nil
}

// MockFile is one open image, or the directory
type MockFile struct {
	fs   *MockFS
	info MockFI
	rdr  *strings.Reader
}

func (mf *MockFile) Read(p []byte) (int, error) {
	if mf.fs.ReadErr {
		return 0, errors.New("a faked read error")
	}
	if mf.rdr == nil {
		return 0, io.EOF
	}
	return mf.rdr.Read(p)
}

func (mf *MockFile) Seek(offset int64, whence int) (int64, error) {
	if mf.rdr == nil {
		return 0, nil
	}
	return mf.rdr.Seek(offset, whence)
}

func (mf *MockFile) Readdir(n int) ([]os.FileInfo, error) {
	if mf.fs.ListErr {
		return nil, errors.New("a faked readdir error")
	}
	if !mf.info.Dir {
		return nil, errors.New("not a directory")
	}

	names := make([]string, 0, len(mf.fs.Images))
	for name := range mf.fs.Images {
		names = append(names, name)
	}
	sort.Strings(names)

	var fis []os.FileInfo
	for _, name := range names {
		fis = append(fis, MockFI{Fname: name, Ftext: mf.fs.Images[name]})
	}
	return fis, nil
}

func (mf *MockFile) Stat() (os.FileInfo, error) {
	if mf.fs.StatErr {
		return nil, errors.New("a faked error")
	}
	return mf.info, nil
}

func (mf *MockFile) Close() error {
	return nil
}
