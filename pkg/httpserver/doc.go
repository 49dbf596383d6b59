// Package httpserver wraps net/http.Server with graceful shutdown.
//
// Run blocks until the context is cancelled, an interrupt signal arrives, or
// the listener fails; shutdown drains in-flight requests within the
// configured timeout.
package httpserver
