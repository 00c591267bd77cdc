// Package couchtest provides an in-memory fake of a CouchDB-style document
// store for tests.
//
// The server implements the subset of the HTTP API the client is exercised
// against: the welcome document, database create/read/delete, document
// create/read/update/delete with revisions and conflicts, _all_dbs and
// _all_docs. Error responses carry CouchDB's {"error","reason"} bodies.
//
//	srv := couchtest.NewServer(couchtest.WithCredentials("admin", "secret"))
//	defer srv.Close()
//
//	resp, err := client.NewRequest(srv.Options()).WithPath("/_all_dbs").Execute(ctx)
package couchtest
