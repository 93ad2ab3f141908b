package mcp

import (
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions against the indexed documents.
	Ask driving.AskService

	// Ingest accepts documents and tracks their processing.
	Ingest driving.IngestService

	// KB manages knowledge bases.
	KB driving.KnowledgeBaseService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	// Ingest and KB are optional; the tools and resources that need
	// them report unavailability per call.
	return nil
}
