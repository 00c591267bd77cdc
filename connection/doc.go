// Package connection holds the settings used to reach a document-store server.
//
// Options is a plain value: pass it by value and treat it as read-only once
// requests have been built from it.
//
// # Configuration
//
//	connection:
//	  host: "127.0.0.1"
//	  port: 5984
//	  secure: false
//	  username: "admin"
//	  password: "secret"
//
// # Usage
//
//	opts := connection.Localhost()
//	opts.Username, opts.Password = "admin", "secret"
package connection
