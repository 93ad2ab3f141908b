package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/veritas-labs/counsel/internal/connectors/filesystem"
	"github.com/veritas-labs/counsel/internal/connectors/web"
	"github.com/veritas-labs/counsel/internal/core/domain"
)

// errIngestUnavailable is returned by tools that need the ingest
// service when the server was started without one.
var errIngestUnavailable = errors.New("ingest service is not available")

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question      string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	KnowledgeBase string `json:"knowledge_base,omitempty" jsonschema:"restrict retrieval to this knowledge base ID or name"`
	TopK          int    `json:"top_k,omitempty" jsonschema:"number of passages to retrieve (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
}

// CitationOutput is a single source reference backing an answer.
type CitationOutput struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	KnowledgeBase string  `json:"knowledge_base,omitempty"`
	Passage       int     `json:"passage"`
	Excerpt       string  `json:"excerpt"`
	Score         float64 `json:"score"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path          string `json:"path,omitempty" jsonschema:"filesystem path of the document to ingest"`
	URL           string `json:"url,omitempty" jsonschema:"remote URL to fetch and ingest"`
	KnowledgeBase string `json:"knowledge_base,omitempty" jsonschema:"knowledge base ID or name to file the document under"`
	Title         string `json:"title,omitempty" jsonschema:"display title for the document"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// DocumentStatusInput is the input schema for the document_status tool.
type DocumentStatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"ID of the document to check"`
}

// DocumentStatusOutput is the output schema for the document_status tool.
type DocumentStatusOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	URI        string `json:"uri"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	KnowledgeBase string `json:"knowledge_base,omitempty" jsonschema:"list only documents in this knowledge base ID or name"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single listed document.
type DocumentOutput struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URI    string `json:"uri"`
	Status string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documents with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a local file or a remote URL into the document index",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Check the processing status of an ingested document",
	}, s.handleDocumentStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List ingested documents, optionally scoped to a knowledge base",
	}, s.handleListDocuments)
}

// resolveKnowledgeBaseID turns a knowledge base name or ID into an ID.
// Without a KB service the value is passed through as an ID.
func (s *Server) resolveKnowledgeBaseID(ctx context.Context, idOrName string) (string, error) {
	if idOrName == "" || s.ports.KB == nil {
		return idOrName, nil
	}
	kb, err := s.ports.KB.Resolve(ctx, idOrName)
	if err != nil {
		return "", fmt.Errorf("resolving knowledge base %q: %w", idOrName, err)
	}
	return kb.ID, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	kbID, err := s.resolveKnowledgeBaseID(ctx, input.KnowledgeBase)
	if err != nil {
		return nil, AskOutput{}, err
	}

	query := domain.Query{
		Text:  input.Question,
		Scope: domain.Scope{KnowledgeBaseID: kbID},
		TopK:  input.TopK,
	}

	answer, err := s.ports.Ask.Ask(ctx, query)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		Citations: make([]CitationOutput, len(answer.Citations)),
	}
	for i := range answer.Citations {
		c := &answer.Citations[i]
		output.Citations[i] = CitationOutput{
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			KnowledgeBase: c.KnowledgeBase,
			Passage:       c.ChunkIndex + 1,
			Excerpt:       c.Excerpt,
			Score:         c.Score,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errIngestUnavailable
	}
	if (input.Path == "") == (input.URL == "") {
		return nil, IngestOutput{}, errors.New("pass exactly one of path or url")
	}

	kbID, err := s.resolveKnowledgeBaseID(ctx, input.KnowledgeBase)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	var raw *domain.RawDocument
	if input.URL != "" {
		raw, err = web.New(web.Config{}).Fetch(ctx, input.URL)
	} else {
		raw, err = filesystem.Load(input.Path)
	}
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("loading document: %w", err)
	}

	raw.KnowledgeBaseID = kbID
	if input.Title != "" {
		raw.Title = input.Title
	}

	doc, err := s.ports.Ingest.Ingest(ctx, raw)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		DocumentID: doc.ID,
		Status:     string(doc.Status),
	}, nil
}

// handleDocumentStatus handles the document_status tool invocation.
func (s *Server) handleDocumentStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentStatusInput,
) (*mcp.CallToolResult, DocumentStatusOutput, error) {
	if s.ports.Ingest == nil {
		return nil, DocumentStatusOutput{}, errIngestUnavailable
	}

	doc, err := s.ports.Ingest.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentStatusOutput{}, err
	}

	return nil, DocumentStatusOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
		URI:        doc.URI,
		Status:     string(doc.Status),
		Error:      doc.ErrorMessage,
	}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Ingest == nil {
		return nil, ListDocumentsOutput{}, errIngestUnavailable
	}

	kbID, err := s.resolveKnowledgeBaseID(ctx, input.KnowledgeBase)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	docs, err := s.ports.Ingest.List(ctx, domain.Scope{KnowledgeBaseID: kbID})
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:     docs[i].ID,
			Title:  docs[i].Title,
			URI:    docs[i].URI,
			Status: string(docs[i].Status),
		}
	}

	return nil, output, nil
}
