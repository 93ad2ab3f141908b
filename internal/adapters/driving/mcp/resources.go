package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for counsel resources.
	uriScheme = "counsel://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing knowledge bases.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "knowledge-bases",
		Name:        "knowledge-bases",
		Description: "List of all knowledge bases",
		MIMEType:    "application/json",
	}, s.handleKnowledgeBasesResource)

	// Template for the documents in a knowledge base.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "knowledge-bases/{kbId}/documents",
		Name:        "knowledge-base-documents",
		Description: "Documents filed under a specific knowledge base",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for extracted document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleKnowledgeBasesResource returns a list of all knowledge bases.
func (s *Server) handleKnowledgeBasesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.KB == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	kbs, err := s.ports.KB.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing knowledge bases: %w", err)
	}

	type kbInfo struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	infos := make([]kbInfo, len(kbs))
	for i := range kbs {
		infos[i] = kbInfo{
			ID:          kbs[i].ID,
			Name:        kbs[i].Name,
			Description: kbs[i].Description,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling knowledge bases: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentsResource returns the documents in a knowledge base.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract kbId from URI: counsel://knowledge-bases/{kbId}/documents
	kbID := extractKnowledgeBaseID(req.Params.URI)
	if kbID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Ingest.List(ctx, domain.Scope{KnowledgeBaseID: kbID})
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		URI    string `json:"uri"`
		Status string `json:"status"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:     docs[i].ID,
			Title:  docs[i].Title,
			URI:    docs[i].URI,
			Status: string(docs[i].Status),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the extracted text of a document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: counsel://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Ingest.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

// extractKnowledgeBaseID extracts the knowledge base ID from a URI like
// counsel://knowledge-bases/{kbId}/documents.
func extractKnowledgeBaseID(uri string) string {
	const prefix = uriScheme + "knowledge-bases/"
	const suffix = "/documents"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractDocumentID extracts the document ID from a URI like
// counsel://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
