package httpx

import (
	"net/http"
	"net/http/httptest"
)

// TestServer is an httptest.Server paired with a Client pointed at it.
type TestServer struct{ *httptest.Server }

func NewTestServer(handler http.Handler) *TestServer {
	return &TestServer{httptest.NewServer(handler)}
}

// BaseURL is empty for a nil or unstarted server.
func (ts *TestServer) BaseURL() string {
	if ts == nil || ts.Server == nil {
		return ""
	}
	return ts.URL
}

// Client returns a Client for ts; opts apply after the base URL.
func (ts *TestServer) Client(opts ...ClientOption) *Client {
	return NewClient(append([]ClientOption{WithBaseURL(ts.BaseURL())}, opts...)...)
}
