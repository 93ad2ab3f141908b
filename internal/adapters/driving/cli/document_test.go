package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage ingested documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "status")
	assert.Contains(t, commandNames, "content")
	assert.Contains(t, commandNames, "delete")
}

// Document List Tests

func TestDocumentListCmd_PrintsDocuments(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "Master Services Agreement")
	assert.Contains(t, buf.String(), "doc-2")
	assert.Contains(t, buf.String(), "Mutual NDA")
	assert.Contains(t, buf.String(), "Total: 2 documents")
}

func TestDocumentListCmd_ScopesToKB(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := ingestService.(*stubIngestService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list", "--kb", "contracts"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "kb-1", ingest.lastListScope.KnowledgeBaseID)
}

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := ingestService.(*stubIngestService)
	ingest.listDocs = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents found.")
}

// Document Status Tests

func TestDocumentStatusCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentStatusCmd_PrintsDetails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "status", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "ID:      doc-1")
	assert.Contains(t, buf.String(), "Status:  indexed")
	assert.Contains(t, buf.String(), "KB:      kb-1")
	assert.Contains(t, buf.String(), "Size:    2048 bytes")
}

func TestDocumentStatusCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "status", "doc-404"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document")
}

// Document Content Tests

func TestDocumentContentCmd_PrintsText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Section 7. Indemnification.")
}

func TestDocumentContentCmd_NoText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := ingestService.(*stubIngestService)
	ingest.docs["doc-1"].Content = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no extracted text")
}

// Document Delete Tests

func TestDocumentDeleteCmd_Deletes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingest := ingestService.(*stubIngestService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted document doc-1")
	assert.Equal(t, []string{"doc-1"}, ingest.deleted)
}

func TestDocumentCmds_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
