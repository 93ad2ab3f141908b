package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
	"github.com/veritas-labs/counsel/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

const (
	// DefaultContextBudget caps the characters of retrieved passages
	// packed into one prompt.
	DefaultContextBudget = 8000

	// DefaultQueryTimeout bounds the language-model call per query.
	DefaultQueryTimeout = 60 * time.Second

	// DefaultSummaryLength is the target summary size in characters
	// when the caller does not specify one.
	DefaultSummaryLength = 1000

	// citationExcerptLimit caps citation excerpts, in runes.
	citationExcerptLimit = 500

	// summariseInputLimit caps the text sent to the summariser, in
	// runes, to keep the prompt within model context.
	summariseInputLimit = 24000
)

// fallbackAnswerPrompt is used if the prompt store cannot provide the
// answer system prompt.
const fallbackAnswerPrompt = "You are a legal research assistant. Answer using only the " +
	"context excerpts provided. If the context is insufficient, say so plainly."

// AskService answers questions against the indexed corpus: embed the
// query, search the vector index, hydrate hits from the document
// store, pack a context budget and make one LLM call.
type AskService struct {
	docStore driven.DocumentStore
	kbStore  driven.KnowledgeBaseStore
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore

	contextBudget int
	queryTimeout  time.Duration
}

// NewAskService creates a query service. The prompt store is optional;
// when nil the embedded prompts are used.
func NewAskService(
	docStore driven.DocumentStore,
	kbStore driven.KnowledgeBaseStore,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *AskService {
	return &AskService{
		docStore:      docStore,
		kbStore:       kbStore,
		index:         index,
		embedder:      embedder,
		llm:           llm,
		prompts:       prompts,
		contextBudget: DefaultContextBudget,
		queryTimeout:  DefaultQueryTimeout,
	}
}

// SetContextBudget overrides the prompt context budget in characters.
func (s *AskService) SetContextBudget(chars int) {
	if chars > 0 {
		s.contextBudget = chars
	}
}

// SetQueryTimeout overrides the per-query LLM timeout.
func (s *AskService) SetQueryTimeout(d time.Duration) {
	if d > 0 {
		s.queryTimeout = d
	}
}

// Retrieve returns the ranked passages for a query without answer
// generation.
func (s *AskService) Retrieve(ctx context.Context, query domain.Query) ([]domain.RetrievedPassage, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return []domain.RetrievedPassage{}, nil
	}

	topK := query.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, embedding, topK, query.Scope)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieval: %d hits for %q", len(hits), text)

	return s.hydrate(ctx, hits, query.MinScore)
}

// hydrate joins vector hits back to chunk content and document
// metadata. Hits whose chunk or document has vanished are skipped.
func (s *AskService) hydrate(ctx context.Context, hits []driven.VectorHit, minScore float64) ([]domain.RetrievedPassage, error) {
	passages := make([]domain.RetrievedPassage, 0, len(hits))
	kbNames := make(map[string]string)

	for _, hit := range hits {
		if minScore > 0 && hit.Score < minScore {
			continue
		}

		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}

		doc, err := s.docStore.GetDocument(ctx, chunk.DocumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get document %s: %w", chunk.DocumentID, err)
		}

		passages = append(passages, domain.RetrievedPassage{
			ChunkID:           chunk.ID,
			DocumentID:        doc.ID,
			DocumentTitle:     doc.Title,
			KnowledgeBaseID:   doc.KnowledgeBaseID,
			KnowledgeBaseName: s.knowledgeBaseName(ctx, doc.KnowledgeBaseID, kbNames),
			ChunkIndex:        chunk.Index,
			Content:           chunk.Content,
			Score:             hit.Score,
		})
	}

	return passages, nil
}

// knowledgeBaseName resolves a KB ID to its display name, caching
// lookups for the duration of one retrieval.
func (s *AskService) knowledgeBaseName(ctx context.Context, kbID string, cache map[string]string) string {
	if kbID == "" || s.kbStore == nil {
		return ""
	}
	if name, ok := cache[kbID]; ok {
		return name
	}
	name := ""
	if kb, err := s.kbStore.GetKnowledgeBase(ctx, kbID); err == nil {
		name = kb.Name
	}
	cache[kbID] = name
	return name
}

// Ask retrieves relevant passages and generates a grounded answer.
func (s *AskService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	started := time.Now()

	passages, err := s.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	retrievalElapsed := time.Since(started)

	packed, contextText := s.packContext(passages)

	systemPrompt := s.loadPrompt(driven.PromptAnswerSystem, fallbackAnswerPrompt)
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, strings.TrimSpace(query.Text))

	llmStarted := time.Now()
	llmCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	text, err := s.llm.Generate(llmCtx, prompt, driven.GenerateOptions{
		SystemPrompt: systemPrompt,
		Temperature:  temperature(query),
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	llmElapsed := time.Since(llmStarted)

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: buildCitations(packed),
		Timings: domain.Timings{
			Retrieval: retrievalElapsed,
			LLM:       llmElapsed,
			Total:     time.Since(started),
		},
	}, nil
}

// Chat continues a conversation with retrieval over the query scope.
// Prior turns are replayed to the model; retrieval context rides in
// the system prompt so history stays clean.
func (s *AskService) Chat(ctx context.Context, query domain.Query, history []driving.ChatTurn) (*domain.Answer, error) {
	started := time.Now()

	passages, err := s.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	retrievalElapsed := time.Since(started)

	packed, contextText := s.packContext(passages)
	systemPrompt := s.loadPrompt(driven.PromptChatSystem, fallbackAnswerPrompt)

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{
		Role:    "system",
		Content: systemPrompt + "\n\nContext:\n" + contextText,
	})
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: strings.TrimSpace(query.Text)})

	llmStarted := time.Now()
	llmCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	text, err := s.llm.Chat(llmCtx, messages, driven.ChatOptions{Temperature: temperature(query)})
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	llmElapsed := time.Since(llmStarted)

	return &domain.Answer{
		Text:      strings.TrimSpace(text),
		Citations: buildCitations(packed),
		Timings: domain.Timings{
			Retrieval: retrievalElapsed,
			LLM:       llmElapsed,
			Total:     time.Since(started),
		},
	}, nil
}

// Summarise produces a short summary of one document's extracted text.
func (s *AskService) Summarise(ctx context.Context, documentID string, maxLength int) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("%w: document %s has no extracted text", domain.ErrInvalidInput, documentID)
	}

	return s.summarise(ctx, doc.Content, maxLength)
}

// SummariseScope produces one combined summary of every indexed
// document in the scope.
func (s *AskService) SummariseScope(ctx context.Context, scope domain.Scope, maxLength int) (string, error) {
	docs, err := s.docStore.ListDocuments(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}

	var b strings.Builder
	for i := range docs {
		doc := &docs[i]
		if doc.Status != domain.StatusIndexed || strings.TrimSpace(doc.Content) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Document: %s\n%s", doc.Title, doc.Content)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no indexed documents in scope", domain.ErrNotFound)
	}

	return s.summarise(ctx, b.String(), maxLength)
}

func (s *AskService) summarise(ctx context.Context, content string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}
	content = truncateRunes(content, summariseInputLimit)

	llmCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	summary, err := s.llm.Summarise(llmCtx, content, maxLength)
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return summary, nil
}

// packContext selects passages for the prompt under the character
// budget. Passages arrive ranked, so the lowest-scored drop first.
// Returns the passages actually packed and the rendered block text.
func (s *AskService) packContext(passages []domain.RetrievedPassage) ([]domain.RetrievedPassage, string) {
	if len(passages) == 0 {
		return nil, "(no passages retrieved)"
	}

	var b strings.Builder
	packed := make([]domain.RetrievedPassage, 0, len(passages))
	remaining := s.contextBudget

	for _, p := range passages {
		block := formatPassage(p)
		cost := utf8.RuneCountInString(block)
		if len(packed) > 0 {
			cost += 2 // separating blank line
		}
		if cost > remaining {
			break
		}
		if len(packed) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		remaining -= cost
		packed = append(packed, p)
	}

	// Never send an empty context because the top passage alone
	// exceeds the budget; truncate it instead.
	if len(packed) == 0 {
		p := passages[0]
		p.Content = truncateRunes(p.Content, s.contextBudget)
		packed = append(packed, p)
		b.WriteString(formatPassage(p))
	}

	return packed, b.String()
}

// formatPassage renders one retrieved passage as a prompt block.
func formatPassage(p domain.RetrievedPassage) string {
	kb := p.KnowledgeBaseName
	if kb == "" {
		kb = "unfiled"
	}
	return fmt.Sprintf("Document: %s (Source: %s)\nPassage %d:\n%s",
		p.DocumentTitle, kb, p.ChunkIndex, p.Content)
}

// buildCitations converts packed passages to citations, deduplicated
// by (document title, knowledge base) keeping the highest score.
// Input arrives ranked, so the first occurrence wins.
func buildCitations(passages []domain.RetrievedPassage) []domain.Citation {
	citations := make([]domain.Citation, 0, len(passages))
	seen := make(map[[2]string]bool)

	for _, p := range passages {
		key := [2]string{p.DocumentTitle, p.KnowledgeBaseName}
		if seen[key] {
			continue
		}
		seen[key] = true

		citations = append(citations, domain.Citation{
			DocumentID:    p.DocumentID,
			DocumentTitle: p.DocumentTitle,
			KnowledgeBase: p.KnowledgeBaseName,
			ChunkIndex:    p.ChunkIndex,
			Excerpt:       excerpt(p.Content),
			Score:         p.Score,
		})
	}

	return citations
}

// excerpt caps citation text at citationExcerptLimit runes.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= citationExcerptLimit {
		return content
	}
	return string(runes[:citationExcerptLimit]) + "..."
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// loadPrompt reads a named prompt, falling back to the embedded
// default when the store is absent or fails.
func (s *AskService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil {
		logger.Warn("Loading prompt %q failed: %v", name, err)
		return fallback
	}
	return prompt
}

func temperature(query domain.Query) float64 {
	if query.Temperature > 0 {
		return query.Temperature
	}
	return domain.DefaultTemperature
}
