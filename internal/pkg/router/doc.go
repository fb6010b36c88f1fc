// Package router wraps httprouter with the application's middleware chain,
// JSON response envelopes, and request helpers.
package router
