package clock

import "time"

// Clocker is the time source used across the service. Code that compares
// token expiries or one-time-code windows reads time through it, so tests
// can move the clock instead of sleeping.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the real system time.
type TimeClocker struct{}

// New returns the production clock.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}
