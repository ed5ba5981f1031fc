// Package mcp serves elicitation tools over the Model Context Protocol and
// implements a channel backed by MCP server-initiated elicitation.
package mcp
