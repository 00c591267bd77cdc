// Command cradle sends a single request to a CouchDB-style document store.
//
//	cradle request /db/doc1
//	cradle request -X PUT -d '{"a":1}' /db/doc1
//	cradle request -p key='"x"' /db/_design/d/_view/v
//	cradle ping
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
