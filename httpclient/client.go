package httpclient

import (
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/logger"
	"github.com/kbukum/cradle/observability"
)

// Doer sends an HTTP request and returns its response. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes requests built with NewRequest.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	config  Config
	doer    Doer
	httpc   *http.Client
	log     *logger.Logger
	metrics *observability.ClientMetrics
	tracer  trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request logs.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for request spans. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithHTTPDoer replaces the underlying HTTP transport.
// Config.Timeout and Config.FollowRedirects are not applied to d.
func WithHTTPDoer(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// New creates a new Client from the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.doer == nil {
		c.httpc = &http.Client{Timeout: cfg.Timeout}
		if !*cfg.FollowRedirects {
			c.httpc.CheckRedirect = func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}
		}
		c.doer = c.httpc
	}
	if c.log == nil {
		c.log = logger.GetGlobalLogger()
	}
	c.log = c.log.WithComponent("httpclient")

	return c, nil
}

// NewRequest starts a request against the server described by opts.
// The request defaults to GET on "/".
func (c *Client) NewRequest(opts connection.Options) *Request {
	return &Request{
		client: c,
		opts:   opts,
		verb:   MethodGet,
	}
}

// Config returns a copy of the client configuration with defaults applied.
func (c *Client) Config() Config {
	return c.config
}

// Close releases idle connections held by the client's own transport.
func (c *Client) Close() {
	if c.httpc != nil {
		c.httpc.CloseIdleConnections()
	}
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
)

// DefaultClient returns a lazily created Client with default configuration.
func DefaultClient() *Client {
	defaultOnce.Do(func() {
		c, err := New(Config{})
		if err != nil {
			// Zero Config always validates after defaults.
			panic(err)
		}
		defaultClient = c
	})
	return defaultClient
}

// WithOptions starts a request on the default client.
func WithOptions(opts connection.Options) *Request {
	return DefaultClient().NewRequest(opts)
}
