package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/util"
	"github.com/kbukum/cradle/version"
)

// captured holds what the test server observed for a single request.
type captured struct {
	method        string
	path          string
	rawQuery      string
	auth          string
	userAgent     string
	contentType   string
	contentLength int64
	body          string
	header        http.Header
}

func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*got = captured{
			method:        r.Method,
			path:          r.URL.Path,
			rawQuery:      r.URL.RawQuery,
			auth:          r.Header.Get("Authorization"),
			userAgent:     r.Header.Get("User-Agent"),
			contentType:   r.Header.Get("Content-Type"),
			contentLength: r.ContentLength,
			body:          string(data),
			header:        r.Header.Clone(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestExecute_GETDocument(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"_id":"doc1"}`)
	c := newTestClient(t, Config{})

	resp, err := c.NewRequest(optionsFor(t, srv)).
		WithHTTPVerb(MethodGet).
		WithPath("/db/doc1").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.method != http.MethodGet {
		t.Errorf("expected GET, got %s", got.method)
	}
	if got.path != "/db/doc1" {
		t.Errorf("expected /db/doc1, got %s", got.path)
	}
	if got.auth != "" {
		t.Errorf("expected no Authorization header, got %q", got.auth)
	}
	if got.contentLength != 0 || got.body != "" {
		t.Errorf("expected empty body, got length %d body %q", got.contentLength, got.body)
	}
	if resp.StatusCode != http.StatusOK || !resp.IsSuccess() {
		t.Errorf("expected 200 success, got %d", resp.StatusCode)
	}
	if resp.Data != `{"_id":"doc1"}` {
		t.Errorf("unexpected data %q", resp.Data)
	}
	if resp.Method != MethodGet {
		t.Errorf("expected method GET, got %s", resp.Method)
	}
	if resp.URI.Path != "/db/doc1" {
		t.Errorf("expected uri path /db/doc1, got %s", resp.URI.Path)
	}
	if resp.Header("content-type") != "application/json" {
		t.Errorf("expected JSON content type, got %q", resp.Header("content-type"))
	}
}

func TestExecute_PUTWithBody(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusCreated, `{"ok":true}`)
	c := newTestClient(t, Config{})

	resp, err := c.NewRequest(optionsFor(t, srv)).
		WithHTTPVerb(MethodPut).
		WithPath("db").
		WithPostData(`{"a":1}`).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.method != http.MethodPut {
		t.Errorf("expected PUT, got %s", got.method)
	}
	if got.path != "/db" {
		t.Errorf("expected /db, got %s", got.path)
	}
	if got.contentLength != 7 {
		t.Errorf("expected Content-Length 7, got %d", got.contentLength)
	}
	if got.body != `{"a":1}` {
		t.Errorf("unexpected body %q", got.body)
	}
	if got.contentType != "application/json" {
		t.Errorf("expected application/json, got %q", got.contentType)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestExecute_BlankBodyPOST(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"no default headers", nil},
		{"configured content type dropped", map[string]string{"Content-Type": "text/plain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{}`)
			c := newTestClient(t, Config{Headers: tt.headers})

			_, err := c.NewRequest(optionsFor(t, srv)).
				WithHTTPVerb(MethodPost).
				WithPath("/db/_compact").
				WithPostData("  ").
				Execute(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.contentLength != 0 {
				t.Errorf("expected Content-Length 0, got %d", got.contentLength)
			}
			if cl := got.header.Get("Content-Length"); cl != "0" {
				t.Errorf("expected explicit Content-Length: 0, got %q", cl)
			}
			if got.contentType != "" {
				t.Errorf("expected no Content-Type, got %q", got.contentType)
			}
		})
	}
}

func TestExecute_ConfiguredHeadersDroppedWithoutBodyOrCredentials(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, Config{Headers: map[string]string{
		"Authorization": "Bearer x",
		"Content-Type":  "text/plain",
		"X-Trace":       "on",
	}})

	_, err := c.NewRequest(optionsFor(t, srv)).
		WithHTTPVerb(MethodDelete).
		WithPath("db//x").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.auth != "" {
		t.Errorf("expected no Authorization, got %q", got.auth)
	}
	if got.contentType != "" {
		t.Errorf("expected no Content-Type, got %q", got.contentType)
	}
	if got.header.Get("X-Trace") != "on" {
		t.Errorf("expected default header X-Trace, got %q", got.header.Get("X-Trace"))
	}
	if got.body != "" {
		t.Errorf("expected empty body, got %q", got.body)
	}
}

func TestExecute_ConfiguredContentTypeReplacedForBody(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusCreated, `{"ok":true}`)
	c := newTestClient(t, Config{Headers: map[string]string{"Content-Type": "text/plain"}})

	_, err := c.NewRequest(optionsFor(t, srv)).
		WithHTTPVerb(MethodPut).
		WithPath("/db/doc").
		WithPostData(`{"a":1}`).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.contentType != contentTypeJSON {
		t.Errorf("expected %q, got %q", contentTypeJSON, got.contentType)
	}
}

func TestExecute_BasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		headers  map[string]string
		want     string
	}{
		{"both set", "u", "p", nil, "Basic dTpw"},
		{"only username", "u", "", nil, ""},
		{"only password", "", "p", nil, ""},
		{"neither", "", "", nil, ""},
		{"configured header without credentials", "", "", map[string]string{"Authorization": "Bearer x"}, ""},
		{"configured header with credentials", "u", "p", map[string]string{"Authorization": "Bearer x"}, "Basic dTpw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{}`)
			c := newTestClient(t, Config{Headers: tt.headers})

			opts := optionsFor(t, srv)
			opts.Username = tt.username
			opts.Password = tt.password

			if _, err := c.NewRequest(opts).Execute(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.auth != tt.want {
				t.Errorf("expected Authorization %q, got %q", tt.want, got.auth)
			}
		})
	}
}

func TestExecute_QueryParameters(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"rows":[]}`)
	c := newTestClient(t, Config{})

	resp, err := c.NewRequest(optionsFor(t, srv)).
		WithPath("/db/_design/d/_view/v").
		WithURLParameter("key", `"x"`).
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.rawQuery != "key=%22x%22" {
		t.Errorf("expected key=%%22x%%22, got %s", got.rawQuery)
	}
	if resp.URI.RawQuery != "key=%22x%22" {
		t.Errorf("expected response uri query key=%%22x%%22, got %s", resp.URI.RawQuery)
	}
}

func TestExecute_URLParametersMap(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, Config{})

	_, err := c.NewRequest(optionsFor(t, srv)).
		WithPath("/db/_all_docs").
		WithURLParameters(map[string]string{"limit": "5", "descending": "true", "include_docs": "true"}).
		WithURLParameter("skip", "1").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "descending=true&include_docs=true&limit=5&skip=1"
	if got.rawQuery != want {
		t.Errorf("expected %s, got %s", want, got.rawQuery)
	}
}

func TestExecute_NotFoundIsNotAnError(t *testing.T) {
	body := `{"error":"not_found","reason":"missing"}`
	srv, _ := newCaptureServer(t, http.StatusNotFound, body)
	c := newTestClient(t, Config{})

	resp, err := c.NewRequest(optionsFor(t, srv)).
		WithPath("/db/nope").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error for 404, got %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if resp.StatusDescription != "Not Found" {
		t.Errorf("expected Not Found, got %q", resp.StatusDescription)
	}
	if resp.Data != body {
		t.Errorf("expected error body, got %q", resp.Data)
	}
	if !resp.IsError() || resp.IsSuccess() {
		t.Error("expected IsError=true, IsSuccess=false")
	}
}

func TestExecute_ServerErrorIsNotAnError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusInternalServerError, `{"error":"unknown_error"}`)
	c := newTestClient(t, Config{})

	resp, err := c.NewRequest(optionsFor(t, srv)).Execute(context.Background())
	if err != nil {
		t.Fatalf("expected no error for 500, got %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestExecute_Verbs(t *testing.T) {
	tests := []struct {
		verb string
		want string
	}{
		{MethodGet, "GET"},
		{MethodPost, "POST"},
		{MethodPut, "PUT"},
		{MethodHead, "HEAD"},
		{MethodInfo, "INFO"},
		{MethodDelete, "DELETE"},
		{"delete", "DELETE"},
		{"", "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.verb, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{}`)
			c := newTestClient(t, Config{})

			resp, err := c.NewRequest(optionsFor(t, srv)).
				WithHTTPVerb(tt.verb).
				WithPath("/db").
				Execute(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.method != tt.want {
				t.Errorf("server saw %s, want %s", got.method, tt.want)
			}
			if resp.Method != tt.want {
				t.Errorf("response method %s, want %s", resp.Method, tt.want)
			}
			if tt.want == MethodHead && resp.Data != "" {
				t.Errorf("expected empty HEAD body, got %q", resp.Data)
			}
		})
	}
}

func TestExecute_UserAgent(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		srv, got := newCaptureServer(t, http.StatusOK, `{}`)
		c := newTestClient(t, Config{})
		if _, err := c.NewRequest(optionsFor(t, srv)).Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.userAgent != version.UserAgent() {
			t.Errorf("expected %q, got %q", version.UserAgent(), got.userAgent)
		}
	})

	t.Run("injected", func(t *testing.T) {
		srv, got := newCaptureServer(t, http.StatusOK, `{}`)
		c := newTestClient(t, Config{
			UserAgent: "my-app/1.2.3",
			Headers:   map[string]string{"User-Agent": "ignored", "X-Tenant": "acme"},
		})
		if _, err := c.NewRequest(optionsFor(t, srv)).Execute(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.userAgent != "my-app/1.2.3" {
			t.Errorf("expected my-app/1.2.3, got %q", got.userAgent)
		}
		if v := got.header.Get("X-Tenant"); v != "acme" {
			t.Errorf("expected default header X-Tenant=acme, got %q", v)
		}
	})
}

func TestExecute_CleanPathMode(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, Config{PathMode: PathModeClean})

	if _, err := c.NewRequest(optionsFor(t, srv)).WithPath("db//doc").Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.path != "/db/doc" {
		t.Errorf("expected /db/doc, got %s", got.path)
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	opts := optionsFor(t, srv)
	srv.Close()

	c := newTestClient(t, Config{})
	resp, err := c.NewRequest(opts).WithPath("/db").Execute(context.Background())
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}
	if !IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !IsTransport(err) {
		t.Error("expected IsTransport=true")
	}

	var e *Error
	if !asError(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Method != MethodGet || !strings.HasSuffix(e.URI, "/db") {
		t.Errorf("unexpected error context: method=%s uri=%s", e.Method, e.URI)
	}
}

func TestExecute_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, Config{Timeout: 50 * time.Millisecond})
	_, err := c.NewRequest(optionsFor(t, srv)).Execute(context.Background())
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.NewRequest(optionsFor(t, srv)).Execute(ctx)
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error for cancelled context, got %v", err)
	}
}

func TestExecute_InvalidHostIsConfigurationError(t *testing.T) {
	c := newTestClient(t, Config{})
	_, err := c.NewRequest(connection.Options{Host: "bad host", Port: 5984}).Execute(context.Background())
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if IsTransport(err) {
		t.Error("configuration error must not be a transport error")
	}
}

func TestExecute_InvalidVerbIsConfigurationError(t *testing.T) {
	c := newTestClient(t, Config{})
	_, err := c.NewRequest(connection.Localhost()).WithHTTPVerb("BAD VERB").Execute(context.Background())
	if !IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExecute_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"moved":true}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("followed by default", func(t *testing.T) {
		c := newTestClient(t, Config{})
		resp, err := c.NewRequest(optionsFor(t, srv)).WithPath("/old").Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if resp.URI.Path != "/new" {
			t.Errorf("expected final uri /new, got %s", resp.URI.Path)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		c := newTestClient(t, Config{FollowRedirects: util.Ptr(false)})
		resp, err := c.NewRequest(optionsFor(t, srv)).WithPath("/old").Execute(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected 302, got %d", resp.StatusCode)
		}
		if resp.URI.Path != "/old" {
			t.Errorf("expected uri /old, got %s", resp.URI.Path)
		}
		if resp.Header("Location") != "/new" {
			t.Errorf("expected Location /new, got %q", resp.Header("Location"))
		}
	})
}

func TestRequest_URI(t *testing.T) {
	c := newTestClient(t, Config{})
	u, err := c.NewRequest(connection.Localhost()).
		WithPath("http://db//doc1").
		WithURLParameter("rev", "1-abc").
		URI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u.String(); got != "http://127.0.0.1:5984/dbdoc1?rev=1-abc" {
		t.Errorf("unexpected uri %s", got)
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestExecute_BodyClosed(t *testing.T) {
	tests := []struct {
		name    string
		reader  io.Reader
		wantErr bool
	}{
		{"success", strings.NewReader(`{"ok":true}`), false},
		{"read failure", failingReader{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &trackingBody{Reader: tt.reader}
			doer := doerFunc(func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Status:     "200 OK",
					Header:     http.Header{},
					Body:       body,
					Request:    req,
				}, nil
			})
			c := newTestClient(t, Config{}, WithHTTPDoer(doer))

			resp, err := c.NewRequest(connection.Localhost()).Execute(context.Background())
			if !body.closed {
				t.Error("expected response body to be closed")
			}
			if tt.wantErr {
				if !IsConnection(err) {
					t.Errorf("expected connection error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Data != `{"ok":true}` {
				t.Errorf("unexpected data %q", resp.Data)
			}
		})
	}
}

func TestWithOptions_DefaultClient(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"couchdb":"Welcome"}`)

	resp, err := WithOptions(optionsFor(t, srv)).Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got.path != "/" {
		t.Errorf("expected /, got %s", got.path)
	}
	if DefaultClient() != DefaultClient() {
		t.Error("expected default client to be shared")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad path mode", Config{PathMode: "strict"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
