// Package mcp provides an MCP (Model Context Protocol) server adapter for
// counsel. It lets MCP clients ask questions over the indexed documents and
// queue new material for ingestion.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")
