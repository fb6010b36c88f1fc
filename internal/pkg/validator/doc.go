// Package validator wraps go-playground/validator v10 behind a small
// interface and converts rule failures into a JSON-friendly field error map.
package validator
