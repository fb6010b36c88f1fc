// Package clock provides a tiny time abstraction.
//
// Business logic should depend on the Clocker interface instead of calling
// time.Now() directly, so expiry rules (token lifetimes, one-time code
// windows) can be tested against a deterministic clock.
package clock
