// Package httpclient builds and executes requests against a CouchDB-style
// document store.
//
// A Request is configured by chaining setters on top of fixed
// connection.Options and is executed once:
//
//	client, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//
//	resp, err := client.NewRequest(connection.Localhost()).
//	    WithHTTPVerb(httpclient.MethodPut).
//	    WithPath("/db/doc1").
//	    WithPostData(`{"a":1}`).
//	    Execute(ctx)
//
// # Outcomes
//
// Any exchange that produced an HTTP status line yields a *Response and a nil
// error, including 4xx and 5xx statuses. Callers branch on Response.StatusCode
// or use Response.Err to classify a failed status.
//
// Everything else is returned as *Error: configuration errors (the URI or
// verb cannot be turned into a request) and transport errors (DNS, refused
// connection, reset, timeout). Nothing is retried.
//
// # Path handling
//
// Paths default to "/", have embedded "http://" and "https://" removed, and
// always start with exactly one "/". In the default legacy mode any run of
// two or more slashes is removed entirely; PathModeClean collapses such runs
// into a single slash instead.
package httpclient
