package mocks

import (
	"bytes"
	"errors"
)

// MockRdr hands out data, then fails instead of reporting io.EOF
type MockRdr struct {
	rdr *bytes.Reader
}

func NewReader(b []byte) *MockRdr {
	return &MockRdr{rdr: bytes.NewReader(b)}
}

func (rdr *MockRdr) Read(p []byte) (n int, err error) {
	if rdr.rdr.Len() == 0 {
		return 0, errors.New("i live to fail")
	}
	return rdr.rdr.Read(p)
}
