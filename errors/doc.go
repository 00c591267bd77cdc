// Package errors provides the structured error type shared by cradle packages.
//
// AppError carries a machine-readable code, the HTTP status it was derived
// from, and whether repeating the operation can succeed. FromStatus maps a
// document-store status line plus its {"error","reason"} body onto an AppError.
package errors
