// Package membership exposes the membership service over HTTP as a mountable
// chi router. Responses are JSON; domain errors are translated to HTTP status
// codes so callers can branch on them without parsing message text.
package membership
