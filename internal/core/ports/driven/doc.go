// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and chunk persistence
//   - KnowledgeBaseStore: Knowledge base persistence
//   - ConversationStore: Conversation persistence
//   - Extractor: Turns raw bytes into plain text
//   - ExtractorRegistry: Selects the appropriate extractor by MIME type
//   - Chunker: Splits extracted text into overlapping passages
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores and searches embeddings
//   - LLMService: Generates grounded answers
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the related feature is disabled:
//
//   - Fetcher: Retrieves documents over HTTP. Without it, URL ingestion is disabled.
//   - PromptStore: Customisable prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
