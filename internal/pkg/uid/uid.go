// Package uid provides the identifier generators used across the
// application: numeric ids for persisted records and string ids for token
// and correlation identifiers.
package uid

// NumberID generates unique numeric identifiers.
type NumberID interface {
	// Generate returns a new unique int64 id.
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	// Generate returns a new unique string id.
	Generate() string
}
