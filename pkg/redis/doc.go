// Package redis provides Redis connection management for the catalog cache.
//
// Mirrors pkg/pg: connect with retry, a health check closure, and sentinel
// errors for startup failures.
package redis
