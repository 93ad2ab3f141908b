// Package connectors groups the integrations that bring documents
// into counsel from the outside world. Each subpackage covers one
// source: the local filesystem (single files, directory scans, and
// watched drop directories) and the web (HTTP fetching for URL
// ingestion).
package connectors
