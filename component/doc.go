// Package component defines the lifecycle interface implemented by
// long-lived cradle pieces such as the document-store client.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line summary for startup logs
package component
