package httpclient

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kbukum/cradle/errors"
)

// Response is the normalized result of an executed request.
type Response struct {
	// Data is the response body as text.
	Data string
	// StatusCode is the numeric HTTP status.
	StatusCode int
	// StatusDescription is the reason phrase, e.g. "Not Found".
	StatusDescription string
	// Headers holds one entry per header; repeated values are joined with ", ".
	Headers map[string]string
	// URI is the URI that produced the response, after any redirects.
	URI *url.URL
	// Method is the upper-cased verb that was sent.
	Method string
}

func newResponse(resp *http.Response, data []byte, method string, requested *url.URL) *Response {
	uri := requested
	if resp.Request != nil && resp.Request.URL != nil {
		uri = resp.Request.URL
	}
	return &Response{
		Data:              string(data),
		StatusCode:        resp.StatusCode,
		StatusDescription: statusDescription(resp),
		Headers:           flattenHeaders(resp.Header),
		URI:               uri,
		Method:            method,
	}
}

func statusDescription(resp *http.Response) string {
	desc := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if desc == "" {
		desc = http.StatusText(resp.StatusCode)
	}
	return desc
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// IsSuccess returns true for 2xx statuses.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true for 4xx and 5xx statuses.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Header returns the value of the named header, matched case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// Err classifies a failed status into an *errors.AppError using the
// "error" and "reason" members of the body when present.
// Returns nil for statuses below 400.
func (r *Response) Err() error {
	if !r.IsError() {
		return nil
	}
	var errName, reason string
	if gjson.Valid(r.Data) {
		res := gjson.GetMany(r.Data, "error", "reason")
		errName, reason = res[0].String(), res[1].String()
	}
	if appErr := errors.FromStatus(r.StatusCode, errName, reason); appErr != nil {
		return appErr
	}
	return nil
}
