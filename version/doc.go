// Package version provides build version information for cradle.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/cradle/version.Version=1.0.0"
//
// UserAgent builds the default client identifier sent with every request
// from these variables only; it never inspects the running binary.
package version
