// Package tui provides the interactive chat terminal interface for counsel.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// Config carries the services and retrieval scope the chat runs against.
// This provides a single injection point for dependency injection.
type Config struct {
	// Ask answers questions with retrieval and citations.
	Ask driving.AskService

	// Scope restricts retrieval to a knowledge base or conversation.
	// The zero value searches everything indexed.
	Scope domain.Scope

	// ScopeName is a human-readable label for Scope shown in the
	// status bar, typically a knowledge base name.
	ScopeName string

	// ModelName is the answering model label shown in the status bar.
	ModelName string
}

// Validate ensures all required services are set.
// Returns an error if any required service is nil.
func (c *Config) Validate() error {
	if c.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
