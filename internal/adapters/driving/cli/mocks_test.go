package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// setupTestServices swaps the package-level services for stubs loaded
// with fixture data and marks them wired so PersistentPreRunE leaves
// them alone. The returned cleanup restores the previous services and
// resets all command flags. Tests that need different stub behaviour
// reassign the service variable after calling this; cleanup still
// restores the original.
func setupTestServices() func() {
	prevAsk := askService
	prevIngest := ingestService
	prevKB := kbService
	prevSettings := settingsService
	prevEmbedding := embeddingService
	prevLLM := llmService
	prevWired := servicesWired

	ingest := newStubIngestService()
	ingest.docs["doc-1"] = &domain.Document{
		ID:              "doc-1",
		KnowledgeBaseID: "kb-1",
		URI:             "/docs/msa.pdf",
		Title:           "Master Services Agreement",
		Status:          domain.StatusIndexed,
		Content:         "Section 7. Indemnification. The Supplier shall indemnify...",
		ByteSize:        2048,
		CreatedAt:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:       time.Date(2025, 3, 10, 9, 1, 30, 0, time.UTC),
	}
	ingest.listDocs = []domain.Document{
		*ingest.docs["doc-1"],
		{ID: "doc-2", URI: "/docs/nda.docx", Title: "Mutual NDA", Status: domain.StatusPending},
	}

	askService = &stubAskService{
		answer: &domain.Answer{
			Text: "Indemnification survives termination for three years.",
			Citations: []domain.Citation{
				{
					DocumentID:    "doc-1",
					DocumentTitle: "Master Services Agreement",
					KnowledgeBase: "contracts",
					ChunkIndex:    2,
					Excerpt:       "shall survive termination for a period of three (3) years",
					Score:         0.87,
				},
			},
			Timings: domain.Timings{
				Retrieval: 12 * time.Millisecond,
				LLM:       890 * time.Millisecond,
				Total:     902 * time.Millisecond,
			},
		},
		summary: "The agreement sets a three-year indemnification tail.",
	}
	ingestService = ingest
	kbService = &stubKBService{
		kbs: []domain.KnowledgeBase{
			{
				ID:          "kb-1",
				Name:        "contracts",
				Description: "Client contracts",
				CreatedAt:   time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
			},
		},
	}
	settingsService = &stubSettingsService{settings: domain.DefaultSettings()}
	embeddingService = &stubEmbedder{}
	llmService = nil
	servicesWired = true

	return func() {
		askService = prevAsk
		ingestService = prevIngest
		kbService = prevKB
		settingsService = prevSettings
		embeddingService = prevEmbedding
		llmService = prevLLM
		servicesWired = prevWired
		resetFlags()
	}
}

// resetFlags returns every command flag variable to its registered
// default. Cobra keeps flag values between Execute calls, so tests
// that set flags would otherwise leak into each other.
func resetFlags() {
	verbose = false
	homeDir = ""

	ingestKB = ""
	ingestConversation = ""
	ingestTitle = ""
	ingestDescription = ""
	ingestWait = false

	askKB = ""
	askDocument = ""
	askConversation = ""
	askTopK = 0
	askTemperature = 0
	askMinScore = 0
	askJSON = false

	summarizeKB = ""
	summarizeConversation = ""
	summarizeMaxLength = 0

	documentListKB = ""
	documentListConversation = ""

	kbDescription = ""

	setKeyProvider = ""
	setKeyModel = ""
	setKeyNoVerify = false

	chatKB = ""
	chatConversation = ""

	watchKB = ""
	mcpPort = 0
}

type stubAskService struct {
	answer     *domain.Answer
	askErr     error
	summary    string
	summaryErr error

	lastQuery  domain.Query
	lastDocID  string
	lastScope  domain.Scope
	lastMaxLen int
}

func (s *stubAskService) Ask(_ context.Context, query domain.Query) (*domain.Answer, error) {
	s.lastQuery = query
	return s.answer, s.askErr
}

func (s *stubAskService) Retrieve(_ context.Context, query domain.Query) ([]domain.RetrievedPassage, error) {
	s.lastQuery = query
	return nil, s.askErr
}

func (s *stubAskService) Summarise(_ context.Context, documentID string, maxLength int) (string, error) {
	s.lastDocID = documentID
	s.lastMaxLen = maxLength
	return s.summary, s.summaryErr
}

func (s *stubAskService) SummariseScope(_ context.Context, scope domain.Scope, maxLength int) (string, error) {
	s.lastScope = scope
	s.lastMaxLen = maxLength
	return s.summary, s.summaryErr
}

func (s *stubAskService) Chat(_ context.Context, query domain.Query, _ []driving.ChatTurn) (*domain.Answer, error) {
	s.lastQuery = query
	return s.answer, s.askErr
}

type stubIngestService struct {
	docs       map[string]*domain.Document
	queued     []*domain.RawDocument
	ingestErr  error
	waitStatus domain.DocumentStatus
	waitError  string
	listDocs   []domain.Document
	listErr    error
	deleted    []string
	deleteErr  error
	reindexed  int
	reindexErr error

	lastListScope domain.Scope
}

func newStubIngestService() *stubIngestService {
	return &stubIngestService{
		docs:       make(map[string]*domain.Document),
		waitStatus: domain.StatusIndexed,
	}
}

func (s *stubIngestService) Ingest(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if s.ingestErr != nil {
		return nil, s.ingestErr
	}
	s.queued = append(s.queued, raw)
	doc := &domain.Document{
		ID:              fmt.Sprintf("queued-%d", len(s.queued)),
		KnowledgeBaseID: raw.KnowledgeBaseID,
		ConversationID:  raw.ConversationID,
		URI:             raw.URI,
		Title:           raw.Title,
		Status:          domain.StatusPending,
	}
	s.docs[doc.ID] = doc
	return doc, nil
}

func (s *stubIngestService) Wait(_ context.Context, documentID string) (*domain.Document, error) {
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	final := *doc
	final.Status = s.waitStatus
	final.ErrorMessage = s.waitError
	return &final, nil
}

func (s *stubIngestService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return doc, nil
}

func (s *stubIngestService) List(_ context.Context, scope domain.Scope) ([]domain.Document, error) {
	s.lastListScope = scope
	return s.listDocs, s.listErr
}

func (s *stubIngestService) Delete(_ context.Context, documentID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, documentID)
	return nil
}

func (s *stubIngestService) Reindex(_ context.Context) error {
	if s.reindexErr != nil {
		return s.reindexErr
	}
	s.reindexed++
	return nil
}

type stubKBService struct {
	kbs        []domain.KnowledgeBase
	createErr  error
	listErr    error
	deleteErr  error
	resolveErr error
	deleted    []string
}

func (s *stubKBService) Create(_ context.Context, name, description string) (*domain.KnowledgeBase, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	kb := domain.KnowledgeBase{
		ID:          fmt.Sprintf("kb-%d", len(s.kbs)+1),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.kbs = append(s.kbs, kb)
	return &kb, nil
}

func (s *stubKBService) Get(_ context.Context, id string) (*domain.KnowledgeBase, error) {
	for i := range s.kbs {
		if s.kbs[i].ID == id {
			return &s.kbs[i], nil
		}
	}
	return nil, fmt.Errorf("knowledge base %s: %w", id, domain.ErrNotFound)
}

func (s *stubKBService) Resolve(_ context.Context, idOrName string) (*domain.KnowledgeBase, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	for i := range s.kbs {
		if s.kbs[i].ID == idOrName || s.kbs[i].Name == idOrName {
			return &s.kbs[i], nil
		}
	}
	return nil, fmt.Errorf("knowledge base %s: %w", idOrName, domain.ErrNotFound)
}

func (s *stubKBService) List(_ context.Context) ([]domain.KnowledgeBase, error) {
	return s.kbs, s.listErr
}

func (s *stubKBService) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubKBService) StartConversation(_ context.Context, title string) (*domain.Conversation, error) {
	return &domain.Conversation{ID: "conv-1", Title: title, CreatedAt: time.Now()}, nil
}

func (s *stubKBService) EndConversation(_ context.Context, _ string) error {
	return nil
}

type stubSettingsService struct {
	settings    domain.Settings
	saved       *domain.Settings
	saveErr     error
	validateErr error

	setProvider domain.LLMProvider
	setModel    string
	setKey      string
}

func (s *stubSettingsService) Get() (*domain.Settings, error) {
	copied := s.settings
	return &copied, nil
}

func (s *stubSettingsService) Save(settings *domain.Settings) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = settings
	s.settings = *settings
	return nil
}

func (s *stubSettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	s.setProvider = provider
	s.setModel = model
	s.setKey = apiKey
	return nil
}

func (s *stubSettingsService) Validate() error {
	return s.validateErr
}

func (s *stubSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

type stubEmbedder struct{}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return 4 }

func (s *stubEmbedder) ModelName() string { return "stub-embed" }

func (s *stubEmbedder) Ping(_ context.Context) error { return nil }

func (s *stubEmbedder) Close() error { return nil }
