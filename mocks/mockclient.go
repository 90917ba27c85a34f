package mocks

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MockClient answers Get with one program image
type MockClient struct {
	Image      string // image text sent back
	URL        string // only this URL is found, any URL when empty
	Err        error  // transport failure
	StatusCode int    // status for a found image, 200 when zero
	Requested  []string
}

func (mc *MockClient) Get(url string) (*http.Response, error) {
	mc.Requested = append(mc.Requested, url)
	if mc.Err != nil {
		return nil, mc.Err
	}

	code := mc.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	body := mc.Image
	if len(mc.URL) > 0 && mc.URL != url {
		code, body = http.StatusNotFound, ""
	}

	return &http.Response{
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}
