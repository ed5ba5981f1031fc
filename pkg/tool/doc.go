// Package tool exposes elicitable types as named, discoverable tools.
//
// Every descriptor maps to exactly one tool whose name is derived from the
// type name by Name. Registries aggregate tools by name: two registries are
// combined with Merge, and a collision is an error rather than a shadowing.
package tool
