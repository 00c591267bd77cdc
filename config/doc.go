// Package config loads client settings from config.yml, .env files and
// environment variables.
//
// Files are resolved in standard locations (./cmd/<service>/, ./config/,
// the working directory). Environment variables override file values using
// underscore-separated paths:
//
//	CONNECTION_HOST=couch.internal
//	CONNECTION_PORT=6984
//	CLIENT_TIMEOUT=5s
//	LOGGING_LEVEL=debug
//
// Usage:
//
//	cfg, err := config.Load("cradle")
//	client, err := httpclient.New(cfg.Client)
//	resp, err := client.NewRequest(cfg.Connection).WithPath("/_all_dbs").Execute(ctx)
package config
