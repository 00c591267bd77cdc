package httpclient

import (
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/logger"
)

// optionsFor returns connection options pointing at srv.
func optionsFor(t *testing.T, srv *httptest.Server) connection.Options {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return connection.Options{Host: u.Hostname(), Port: port}
}

func newTestClient(t *testing.T, cfg Config, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewNop())}, opts...)
	c, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}
