// Package middleware provides the HTTP middleware shared by the segmenter
// modules: request logging, body limits, CORS and request metrics.
package middleware

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack; the first entry runs outermost.
type Chain []Middleware

// Then wraps h with every middleware in the chain.
func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
