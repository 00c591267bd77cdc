package httpclient

import (
	"context"
	"fmt"

	"github.com/kbukum/cradle/component"
	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/util"
)

const componentName = "couchdb"

// Component wraps a Client bound to one server with lifecycle management.
type Component struct {
	client *Client
	config Config
	conn   connection.Options
	opts   []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new client component for the server at conn.
// The client is created lazily in Start().
func NewComponent(cfg Config, conn connection.Options, opts ...Option) *Component {
	return &Component{config: cfg, conn: conn, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	return componentName
}

// Start creates the client.
func (c *Component) Start(_ context.Context) error {
	client, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Stop releases idle connections.
func (c *Component) Stop(_ context.Context) error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// Health probes the server root.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusUnhealthy}
	if c.client == nil {
		h.Message = "not started"
		return h
	}

	resp, err := c.Request().Execute(ctx)
	switch {
	case err != nil:
		h.Message = err.Error()
	case resp.IsSuccess():
		h.Status = component.StatusHealthy
	default:
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("%d %s", resp.StatusCode, resp.StatusDescription)
	}
	return h
}

// Describe returns component description for startup logs.
func (c *Component) Describe() component.Description {
	details := c.conn.String()
	if c.conn.Username != "" {
		details += " user=" + util.MaskSecret(c.conn.Username, 2)
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "document-store",
		Details: details,
		Port:    c.conn.Port,
	}
}

// Client returns the underlying client. Must be called after Start().
func (c *Component) Client() *Client {
	return c.client
}

// Request starts a request against the component's server.
// Must be called after Start().
func (c *Component) Request() *Request {
	return c.client.NewRequest(c.conn)
}
