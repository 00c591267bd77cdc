package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/logger"
	"github.com/kbukum/cradle/observability"
	"github.com/kbukum/cradle/util"
)

// HTTP verbs understood by the document store. INFO is a custom verb.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodHead   = "HEAD"
	MethodInfo   = "INFO"
	MethodDelete = "DELETE"
)

const contentTypeJSON = "application/json"

// Request accumulates the parts of a single call. It is not safe for
// concurrent mutation; build it on one goroutine and execute it once.
type Request struct {
	client *Client
	opts   connection.Options
	verb   string
	path   string
	body   string
	params []param
}

// WithHTTPVerb sets the verb. Any string is accepted; it is upper-cased when sent.
func (r *Request) WithHTTPVerb(verb string) *Request {
	r.verb = verb
	return r
}

// WithPath sets the endpoint path, e.g. "/db/doc1".
func (r *Request) WithPath(path string) *Request {
	r.path = path
	return r
}

// WithPostData sets the JSON body. A blank string sends no body.
func (r *Request) WithPostData(data string) *Request {
	r.body = data
	return r
}

// WithURLParameters appends every pair of params, ordered by key.
func (r *Request) WithURLParameters(params map[string]string) *Request {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.params = append(r.params, param{key: k, value: params[k]})
	}
	return r
}

// WithURLParameter appends a single query parameter.
func (r *Request) WithURLParameter(key, value string) *Request {
	r.params = append(r.params, param{key: key, value: value})
	return r
}

// URI resolves the URI Execute would send to, without any network activity.
func (r *Request) URI() (*url.URL, error) {
	u, err := r.resolve()
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Request) resolve() (*url.URL, *Error) {
	u, err := buildURI(r.opts, r.path, r.params, r.client.config.PathMode)
	if err != nil {
		return nil, NewConfigurationError("invalid request uri", err)
	}
	return u, nil
}

func (r *Request) method() string {
	m := strings.ToUpper(strings.TrimSpace(r.verb))
	if m == "" {
		return MethodGet
	}
	return m
}

// Execute sends the request and waits for the complete response.
//
// A response with any status code is returned with a nil error. A nil
// response is returned only together with an *Error describing a
// configuration or transport failure.
func (r *Request) Execute(ctx context.Context) (*Response, error) {
	method := r.method()

	u, uerr := r.resolve()
	if uerr != nil {
		uerr.Method = method
		return nil, uerr
	}

	req, err := r.newHTTPRequest(ctx, method, u)
	if err != nil {
		cerr := NewConfigurationError("invalid request", err)
		cerr.Method = method
		cerr.URI = u.String()
		return nil, cerr
	}

	requestID := uuid.NewString()
	ctx = logger.ContextWithRequestID(ctx, requestID)
	ctx, span := r.startSpan(ctx, method, u, requestID)
	defer span.End()
	req = req.WithContext(ctx)

	log := r.client.log.WithContext(ctx)
	log.Debug("sending request", logger.Fields(
		logger.FieldMethod, method,
		logger.FieldURI, u.String(),
		logger.FieldBytes, len(r.body),
	))

	c := r.client
	if c.metrics != nil {
		c.metrics.RecordRequestStart(ctx)
	}
	start := time.Now()

	resp, data, err := r.roundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		terr := classifyTransportError(ctx, err)
		terr.Method = method
		terr.URI = u.String()

		span.RecordError(err)
		span.SetAttributes(attribute.String(observability.AttrErrorType, terr.Code.String()))
		span.SetStatus(codes.Error, terr.Code.String())
		if c.metrics != nil {
			c.metrics.RecordRequestEnd(ctx, method, 0, elapsed)
			c.metrics.RecordTransportError(ctx, method, terr.Code.String())
		}
		log.Warn("request failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldMethod, method,
			logger.FieldURI, u.String(),
			logger.FieldError, err.Error(),
		), elapsed))
		return nil, terr
	}

	response := newResponse(resp, data, method, u)

	span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, response.StatusCode))
	if response.IsError() {
		span.SetStatus(codes.Error, response.StatusDescription)
	}
	if c.metrics != nil {
		c.metrics.RecordRequestEnd(ctx, method, response.StatusCode, elapsed)
	}
	log.Debug("request completed", logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, method,
		logger.FieldURI, u.String(),
		logger.FieldStatusCode, response.StatusCode,
		logger.FieldBytes, len(data),
	), elapsed))

	return response, nil
}

// newHTTPRequest builds the outgoing request with body, identifier and
// credentials applied.
func (r *Request) newHTTPRequest(ctx context.Context, method string, u *url.URL) (*http.Request, error) {
	var body io.Reader = http.NoBody
	hasBody := !util.IsBlank(r.body)
	if hasBody {
		body = strings.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if hasBody {
		req.ContentLength = int64(len(r.body))
	} else {
		// net/http only writes an explicit zero length for POST, PUT and PATCH.
		req.ContentLength = 0
	}

	for k, v := range r.client.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Del("Authorization")
	req.Header.Del("Content-Type")
	req.Header.Set("User-Agent", r.client.config.UserAgent)
	if hasBody {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	if r.opts.HasCredentials() {
		req.SetBasicAuth(r.opts.Username, r.opts.Password)
	}
	return req, nil
}

// roundTrip performs the single network attempt and drains the body.
// The body is closed on every path.
func (r *Request) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := r.client.doer.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, data, nil
}

func (r *Request) startSpan(ctx context.Context, method string, u *url.URL, requestID string) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, method),
			attribute.String(observability.AttrURLFull, u.String()),
			attribute.String(observability.AttrServerAddress, u.Host),
			attribute.String(observability.AttrRequestID, requestID),
		),
	}
	if r.client.tracer != nil {
		return r.client.tracer.Start(ctx, observability.SpanDocumentRequest, opts...)
	}
	return observability.StartSpan(ctx, observability.SpanDocumentRequest, opts...)
}
