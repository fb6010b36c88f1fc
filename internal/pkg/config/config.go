package config

import (
	"io"
	"time"
)

// Config defines typed access to runtime configuration values.
//
// Implementations handle retrieval and type conversion, returning zero
// values for missing keys. Business logic receives a Config instance through
// construction and never reads the process environment directly.
type Config interface {
	io.Closer

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetUint retrieves the value for key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetArray retrieves the value for key as a slice of strings.
	GetArray(key string) []string

	// GetSecond interprets the integer value for key as seconds.
	GetSecond(key string) time.Duration

	// GetMinute interprets the integer value for key as minutes.
	GetMinute(key string) time.Duration

	// GetHour interprets the integer value for key as hours.
	GetHour(key string) time.Duration

	// GetDay interprets the integer value for key as days (24h).
	GetDay(key string) time.Duration
}
