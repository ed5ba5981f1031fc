// Package middleware wraps a transcript store with redaction and
// encryption at rest.
package middleware
