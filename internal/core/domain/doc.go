// Package domain contains the core business entities for counsel.
//
// The domain layer has no dependencies on adapters or external
// libraries beyond the standard library. All types here represent
// business concepts: documents, chunks, knowledge bases, queries,
// answers and the error taxonomy of the ingestion and query paths.
//
// Entities flow through the system as follows: raw document bytes are
// extracted into text, chunked into passages, embedded into vectors
// and indexed; at query time passages are retrieved by similarity and
// assembled into a cited answer.
package domain
