package router

import "net/http"

// Middleware decorates an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Chain wraps h with the given middleware so that the first middleware in
// the list is the outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
