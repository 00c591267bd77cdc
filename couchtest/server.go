package couchtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/version"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MethodInfo is the custom verb answered with server information.
const MethodInfo = "INFO"

// RecordedRequest is a request observed by the server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	// RawQuery is the undecoded query string.
	RawQuery string
	Header   http.Header
	Body     string
}

// Server is a fake document store backed by httptest.Server.
type Server struct {
	ts     *httptest.Server
	engine *gin.Engine
	store  *store

	username string
	password string

	mu       sync.Mutex
	requests []RecordedRequest
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials requires Basic authentication with the given credentials
// on every request.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithDatabases creates the named databases up front.
func WithDatabases(names ...string) Option {
	return func(s *Server) {
		for _, name := range names {
			s.store.createDB(name)
		}
	}
}

// NewServer starts a new fake server. Call Close when done.
func NewServer(opts ...Option) *Server {
	s := &Server{store: newStore()}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.record, s.authenticate)
	s.routes(engine)
	s.engine = engine
	s.ts = httptest.NewServer(engine)
	return s
}

// URL returns the server base URL, e.g. "http://127.0.0.1:PORT".
func (s *Server) URL() string {
	return s.ts.URL
}

// Options returns connection options for the server, including the
// configured credentials.
func (s *Server) Options() connection.Options {
	u, _ := url.Parse(s.ts.URL)
	port, _ := strconv.Atoi(u.Port())
	return connection.Options{
		Host:     u.Hostname(),
		Port:     port,
		Username: s.username,
		Password: s.password,
	}
}

// Requests returns a copy of all requests observed so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or false if there is none.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Close shuts the server down.
func (s *Server) Close() {
	s.ts.Close()
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.welcome)
	r.Handle(MethodInfo, "/", s.welcome)
	r.GET("/_all_dbs", s.allDBs)
	r.GET("/_uuids", s.uuids)

	r.PUT("/:db", s.createDB)
	r.GET("/:db", s.getDB)
	r.HEAD("/:db", s.getDB)
	r.DELETE("/:db", s.deleteDB)
	r.POST("/:db", s.postDoc)

	r.GET("/:db/_all_docs", s.allDocs)
	r.PUT("/:db/:doc", s.putDoc)
	r.GET("/:db/:doc", s.getDoc)
	r.HEAD("/:db/:doc", s.getDoc)
	r.DELETE("/:db/:doc", s.deleteDoc)
}

// --- middleware ---

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:   c.Request.Method,
		Path:     c.Request.URL.Path,
		Query:    c.Request.URL.Query(),
		RawQuery: c.Request.URL.RawQuery,
		Header:   c.Request.Header.Clone(),
		Body:     string(body),
	})
	s.mu.Unlock()

	c.Next()
}

func (s *Server) authenticate(c *gin.Context) {
	if s.username == "" && s.password == "" {
		c.Next()
		return
	}
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != s.username || pass != s.password {
		abortWithError(c, http.StatusUnauthorized, "unauthorized", "Name or password is incorrect.")
		return
	}
	c.Next()
}

func abortWithError(c *gin.Context, status int, name, reason string) {
	c.AbortWithStatusJSON(status, gin.H{"error": name, "reason": reason})
}

func writeLookupError(c *gin.Context, res lookupResult) {
	switch res {
	case noDatabase:
		abortWithError(c, http.StatusNotFound, "not_found", "Database does not exist.")
	case noDocument:
		abortWithError(c, http.StatusNotFound, "not_found", "missing")
	case revMismatch:
		abortWithError(c, http.StatusConflict, "conflict", "Document update conflict.")
	}
}

// --- server ---

func (s *Server) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"couchdb": "Welcome",
		"version": version.GetShortVersion(),
		"vendor":  gin.H{"name": version.Product},
	})
}

func (s *Server) allDBs(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.dbNames())
}

func (s *Server) uuids(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count < 1 {
		abortWithError(c, http.StatusBadRequest, "bad_request", "count must be a positive integer")
		return
	}
	ids := make([]string, count)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	c.JSON(http.StatusOK, gin.H{"uuids": ids})
}

// --- databases ---

func (s *Server) createDB(c *gin.Context) {
	if !s.store.createDB(c.Param("db")) {
		abortWithError(c, http.StatusPreconditionFailed, "file_exists",
			"The database could not be created, the file already exists.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true})
}

func (s *Server) getDB(c *gin.Context) {
	name := c.Param("db")
	count, ok := s.store.docCount(name)
	if !ok {
		writeLookupError(c, noDatabase)
		return
	}
	c.JSON(http.StatusOK, gin.H{"db_name": name, "doc_count": count})
}

func (s *Server) deleteDB(c *gin.Context) {
	if !s.store.deleteDB(c.Param("db")) {
		writeLookupError(c, noDatabase)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) allDocs(c *gin.Context) {
	rows, ok := s.store.allDocs(c.Param("db"))
	if !ok {
		writeLookupError(c, noDatabase)
		return
	}
	includeDocs := c.Query("include_docs") == "true"

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		entry := gin.H{"id": r.id, "key": r.id, "value": gin.H{"rev": r.doc.rev}}
		if includeDocs {
			entry["doc"] = json.RawMessage(r.doc.body)
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"total_rows": len(rows), "offset": 0, "rows": out})
}

// --- documents ---

func (s *Server) postDoc(c *gin.Context) {
	s.writeDoc(c, uuid.NewString())
}

func (s *Server) putDoc(c *gin.Context) {
	s.writeDoc(c, c.Param("doc"))
}

func (s *Server) writeDoc(c *gin.Context, id string) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		abortWithError(c, http.StatusBadRequest, "bad_request", "Document must be a JSON object")
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		abortWithError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rev := gjson.GetBytes(body, "_rev").String()
	if rev == "" {
		rev = c.Query("rev")
	}

	next, res, err := s.store.putDoc(c.Param("db"), id, rev, func(r string) ([]byte, error) {
		fields["_id"] = id
		fields["_rev"] = r
		return json.Marshal(fields)
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "unknown_error", err.Error())
		return
	}
	if res != found {
		writeLookupError(c, res)
		return
	}

	c.Header("ETag", strconv.Quote(next))
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id, "rev": next})
}

func (s *Server) getDoc(c *gin.Context) {
	doc, res := s.store.getDoc(c.Param("db"), c.Param("doc"))
	if res != found {
		writeLookupError(c, res)
		return
	}
	c.Header("ETag", strconv.Quote(doc.rev))
	c.Data(http.StatusOK, "application/json", doc.body)
}

func (s *Server) deleteDoc(c *gin.Context) {
	rev := c.Query("rev")
	if rev == "" {
		rev = c.GetHeader("If-Match")
		if unq, err := strconv.Unquote(rev); err == nil {
			rev = unq
		}
	}
	id := c.Param("doc")
	next, res := s.store.deleteDoc(c.Param("db"), id, rev)
	if res != found {
		writeLookupError(c, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id, "rev": next})
}
