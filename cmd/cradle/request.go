package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kbukum/cradle/bootstrap"
	"github.com/kbukum/cradle/httpclient"
)

type requestFlags struct {
	verb    string
	data    string
	params  []string
	verbose bool
	fail    bool
}

func newRequestCmd(g *globalFlags) *cobra.Command {
	f := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "request [path]",
		Short: "Execute one request and print the response body",
		Example: `  cradle request /_all_dbs
  cradle request -X PUT /db
  cradle request -X PUT -d '{"a":1}' /db/doc1
  cradle request -p key='"x"' /db/_design/d/_view/v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(f.params)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			app, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context, a *bootstrap.App) error {
				req := a.Request().
					WithHTTPVerb(f.verb).
					WithPath(path).
					WithPostData(f.data)
				for _, p := range params {
					req.WithURLParameter(p[0], p[1])
				}
				return runRequest(ctx, cmd, req, f)
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.verb, "request", "X", httpclient.MethodGet, "verb: GET, POST, PUT, HEAD, INFO, DELETE")
	fl.StringVarP(&f.data, "data", "d", "", "JSON request body")
	fl.StringArrayVarP(&f.params, "param", "p", nil, "query parameter key=value (repeatable, sent in order)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "print the status line and headers to stderr")
	fl.BoolVar(&f.fail, "fail", false, "exit non-zero on 4xx/5xx statuses")
	return cmd
}

func runRequest(ctx context.Context, cmd *cobra.Command, req *httpclient.Request, f *requestFlags) error {
	start := time.Now()
	resp, err := req.Execute(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if f.verbose {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "%s %s -> %d %s (%s in %s)\n",
			resp.Method, resp.URI, resp.StatusCode, resp.StatusDescription,
			humanize.Bytes(uint64(len(resp.Data))), elapsed.Round(time.Millisecond))
		for _, name := range sortedKeys(resp.Headers) {
			fmt.Fprintf(errOut, "%s: %s\n", name, resp.Headers[name])
		}
	}

	if resp.Data != "" {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, resp.Data)
		if !strings.HasSuffix(resp.Data, "\n") {
			fmt.Fprintln(out)
		}
	}

	if f.fail {
		return resp.Err()
	}
	return nil
}

// parseParams splits key=value pairs. The value may be empty or contain '='.
func parseParams(raw []string) ([][2]string, error) {
	params := make([][2]string, 0, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", p)
		}
		params = append(params, [2]string{key, value})
	}
	return params, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
