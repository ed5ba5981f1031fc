// Package http serves a tool registry as a JSON API with an OpenAPI 3
// description, optional transcript browsing and Prometheus metrics.
package http
