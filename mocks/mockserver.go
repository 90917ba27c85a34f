package mocks

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServ is a program server holding images by request path
type MockServ struct {
	srv    *httptest.Server
	mu     sync.Mutex
	status int
	images map[string]string
	reqs   []string
	URL    string
}

// NewMockServer starts a server for images. Any status other than 200
// is sent for every request. Call Close when finished.
func NewMockServer(status int, images map[string]string) *MockServ {
	ms := &MockServ{status: status, images: images}

	ms.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.reqs = append(ms.reqs, r.URL.Path)
		ms.mu.Unlock()

		if ms.status != http.StatusOK {
			w.WriteHeader(ms.status)
			return
		}
		img, ok := ms.images[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(img))
	}))
	ms.URL = ms.srv.URL
	return ms
}

// Requests are the paths asked for so far
func (ms *MockServ) Requests() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.reqs...)
}

func (ms *MockServ) Close() {
	ms.srv.Close()
}
