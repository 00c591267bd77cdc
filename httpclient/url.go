package httpclient

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/util"
)

var (
	schemePattern   = regexp.MustCompile(`https?://`)
	slashRunPattern = regexp.MustCompile(`/{2,}`)
)

// sanitizePath normalizes a request path so it always starts with a single
// slash and carries no embedded scheme.
func sanitizePath(path string, mode PathMode) string {
	if util.IsBlank(path) {
		return "/"
	}

	path = schemePattern.ReplaceAllString(path, "")
	if mode == PathModeClean {
		path = slashRunPattern.ReplaceAllString(path, "/")
	} else {
		path = slashRunPattern.ReplaceAllString(path, "")
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// param is a single query string pair.
type param struct {
	key   string
	value string
}

// buildURI assembles scheme://host[:port]path?query and parses the result.
// Keys are written verbatim, values are form-encoded.
func buildURI(opts connection.Options, path string, params []param, mode PathMode) (*url.URL, error) {
	var b strings.Builder
	b.WriteString(opts.Scheme())
	b.WriteString("://")
	b.WriteString(opts.Authority())
	b.WriteString(sanitizePath(path, mode))

	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}

	u, err := url.Parse(b.String())
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: b.String(), Err: errMissingHost}
	}
	return u, nil
}
