package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veritas-labs/counsel/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.counsel/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".counsel", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// KnowledgeBaseStore returns a KnowledgeBaseStore interface backed by this store.
func (s *Store) KnowledgeBaseStore() driven.KnowledgeBaseStore {
	return &knowledgeBaseStore{store: s}
}

// ConversationStore returns a ConversationStore interface backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, knowledge_base_id, conversation_id, uri, title, description,
			source_kind, content, byte_size, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			knowledge_base_id = excluded.knowledge_base_id,
			conversation_id = excluded.conversation_id,
			uri = excluded.uri,
			title = excluded.title,
			description = excluded.description,
			source_kind = excluded.source_kind,
			content = excluded.content,
			byte_size = excluded.byte_size,
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at
	`, doc.ID, nullString(doc.KnowledgeBaseID), nullString(doc.ConversationID),
		doc.URI, doc.Title, doc.Description, string(doc.SourceKind), doc.Content,
		doc.ByteSize, string(doc.Status), doc.ErrorMessage, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// UpdateDocumentStatus transitions a document's lifecycle status.
func (s *documentStore) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	if status != domain.StatusFailed {
		errMsg = ""
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, error_message = ?, updated_at = ? WHERE id = ?
	`, string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking status update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveChunks stores chunks for a document.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, start_offset, end_offset, token_count, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			content = excluded.content,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			token_count = excluded.token_count,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Index,
			chunk.Content, chunk.StartOffset, chunk.EndOffset, chunk.TokenCount,
			embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, knowledge_base_id, conversation_id, uri, title, description,
			source_kind, content, byte_size, status, error_message, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, start_offset, end_offset, token_count, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, position, content, start_offset, end_offset, token_count, embedding
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// DeleteDocument removes a document. Its chunks cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns documents matching the scope, newest first.
func (s *documentStore) ListDocuments(ctx context.Context, scope domain.Scope) ([]domain.Document, error) {
	query := `
		SELECT id, knowledge_base_id, conversation_id, uri, title, description,
			source_kind, content, byte_size, status, error_message, created_at, updated_at
		FROM documents`

	var conditions []string
	var args []any
	if scope.KnowledgeBaseID != "" {
		conditions = append(conditions, "knowledge_base_id = ?")
		args = append(args, scope.KnowledgeBaseID)
	}
	if scope.DocumentID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, scope.DocumentID)
	}
	if scope.ConversationID != "" {
		conditions = append(conditions, "conversation_id = ?")
		args = append(args, scope.ConversationID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// ==================== Knowledge Base Store ====================

// knowledgeBaseStore implements driven.KnowledgeBaseStore.
type knowledgeBaseStore struct {
	store *Store
}

var _ driven.KnowledgeBaseStore = (*knowledgeBaseStore)(nil)

// SaveKnowledgeBase stores or updates a knowledge base.
func (s *knowledgeBaseStore) SaveKnowledgeBase(ctx context.Context, kb *domain.KnowledgeBase) error {
	if kb == nil || kb.ID == "" || kb.Name == "" {
		return domain.ErrInvalidInput
	}
	if kb.CreatedAt.IsZero() {
		kb.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO knowledge_bases (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`, kb.ID, kb.Name, kb.Description, kb.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: knowledge base %q", domain.ErrAlreadyExists, kb.Name)
		}
		return fmt.Errorf("saving knowledge base: %w", err)
	}
	return nil
}

// GetKnowledgeBase retrieves a knowledge base by ID.
func (s *knowledgeBaseStore) GetKnowledgeBase(ctx context.Context, id string) (*domain.KnowledgeBase, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM knowledge_bases WHERE id = ?
	`, id)

	return scanKnowledgeBase(row)
}

// GetKnowledgeBaseByName retrieves a knowledge base by its unique name.
func (s *knowledgeBaseStore) GetKnowledgeBaseByName(ctx context.Context, name string) (*domain.KnowledgeBase, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM knowledge_bases WHERE name = ?
	`, name)

	return scanKnowledgeBase(row)
}

// ListKnowledgeBases returns all knowledge bases ordered by creation time.
func (s *knowledgeBaseStore) ListKnowledgeBases(ctx context.Context) ([]domain.KnowledgeBase, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM knowledge_bases ORDER BY created_at, name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge bases: %w", err)
	}
	defer rows.Close()

	var kbs []domain.KnowledgeBase //nolint:prealloc // size unknown from query
	for rows.Next() {
		var kb domain.KnowledgeBase
		if err := rows.Scan(&kb.ID, &kb.Name, &kb.Description, &kb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning knowledge base: %w", err)
		}
		kbs = append(kbs, kb)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge bases: %w", err)
	}

	return kbs, nil
}

// DeleteKnowledgeBase removes a knowledge base. Its documents cascade.
func (s *knowledgeBaseStore) DeleteKnowledgeBase(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM knowledge_bases WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting knowledge base: %w", err)
	}
	return nil
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// SaveConversation stores or updates a conversation.
func (s *conversationStore) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv == nil || conv.ID == "" {
		return domain.ErrInvalidInput
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title
	`, conv.ID, conv.Title, conv.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID.
func (s *conversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, created_at FROM conversations WHERE id = ?
	`, id)

	var conv domain.Conversation
	if err := row.Scan(&conv.ID, &conv.Title, &conv.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	return &conv, nil
}

// ListConversations returns all conversations, newest first.
func (s *conversationStore) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, created_at FROM conversations ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return convs, nil
}

// DeleteConversation removes a conversation. Its documents cascade.
func (s *conversationStore) DeleteConversation(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var kbID, convID sql.NullString
	var sourceKind, status string

	if err := row.Scan(&doc.ID, &kbID, &convID, &doc.URI, &doc.Title, &doc.Description,
		&sourceKind, &doc.Content, &doc.ByteSize, &status, &doc.ErrorMessage,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.KnowledgeBaseID = kbID.String
	doc.ConversationID = convID.String
	doc.SourceKind = domain.SourceKind(sourceKind)
	doc.Status = domain.DocumentStatus(status)

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var kbID, convID sql.NullString
	var sourceKind, status string

	if err := rows.Scan(&doc.ID, &kbID, &convID, &doc.URI, &doc.Title, &doc.Description,
		&sourceKind, &doc.Content, &doc.ByteSize, &status, &doc.ErrorMessage,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.KnowledgeBaseID = kbID.String
	doc.ConversationID = convID.String
	doc.SourceKind = domain.SourceKind(sourceKind)
	doc.Status = domain.DocumentStatus(status)

	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.TokenCount, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Index, &chunk.Content,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.TokenCount, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// scanKnowledgeBase scans a single knowledge base row.
func scanKnowledgeBase(row *sql.Row) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	if err := row.Scan(&kb.ID, &kb.Name, &kb.Description, &kb.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning knowledge base: %w", err)
	}
	return &kb, nil
}

// nullString returns nil for empty strings so the column stores NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
