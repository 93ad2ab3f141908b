// Package extractors provides implementations of the Extractor interface
// for the document formats counsel ingests. Each extractor knows how to
// pull plain text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup; dispatch is
// by MIME type, with priority deciding when several extractors claim
// the same type.
package extractors
