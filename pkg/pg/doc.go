// Package pg provides PostgreSQL connection management built on pgx.
//
// It covers the plumbing every service binary needs: pool construction with
// retry, schema migrations via goose, a health check closure, and error
// classification helpers so repositories can translate driver errors into
// domain outcomes.
package pg
