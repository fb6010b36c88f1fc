// Package instrument wires OpenTelemetry tracing, metrics, and log export,
// and installs the process-wide structured logger with sensitive-field
// masking.
package instrument
