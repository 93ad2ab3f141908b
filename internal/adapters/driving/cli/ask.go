package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

var (
	askKB           string
	askDocument     string
	askConversation string
	askTopK         int
	askTemperature  float64
	askMinScore     float64
	askJSON         bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the indexed documents",
	Long: `Ask a natural-language question. Counsel retrieves the most relevant
passages from the index, sends them to the configured LLM, and prints
the answer together with citations back to the source documents.

The question can be scoped with --kb, --document, or --conversation;
unscoped questions search everything.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askKB, "kb", "", "restrict retrieval to a knowledge base (name or ID)")
	askCmd.Flags().StringVar(&askDocument, "document", "", "restrict retrieval to a single document ID")
	askCmd.Flags().StringVar(&askConversation, "conversation", "", "restrict retrieval to a conversation ID")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "passages to retrieve (0 uses the configured default)")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0, "LLM sampling temperature (0 uses the configured default)")
	askCmd.Flags().Float64Var(&askMinScore, "min-score", 0, "minimum similarity score for retrieved passages")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return fmt.Errorf("ask service not configured: run 'counsel config set-key' to set provider credentials")
	}

	ctx := context.Background()
	scope, err := resolveScope(ctx, askKB, askDocument, askConversation)
	if err != nil {
		return err
	}

	answer, err := askService.Ask(ctx, domain.Query{
		Text:        args[0],
		Scope:       scope,
		TopK:        askTopK,
		Temperature: askTemperature,
		MinScore:    askMinScore,
	})
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return printAnswerJSON(cmd, answer)
	}
	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)

	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range answer.Citations {
			ref := c.DocumentTitle
			if c.KnowledgeBase != "" {
				ref += fmt.Sprintf(" (%s)", c.KnowledgeBase)
			}
			cmd.Printf("  [%d] %s, passage %d (score %.2f)\n", i+1, ref, c.ChunkIndex+1, c.Score)
		}
	}

	cmd.Println()
	cmd.Printf("retrieval %s, llm %s, total %s\n",
		answer.Timings.Retrieval.Round(time.Millisecond),
		answer.Timings.LLM.Round(time.Millisecond),
		answer.Timings.Total.Round(time.Millisecond))
}

// JSON mirrors of the answer types. The domain structs carry no tags,
// so the output shape is pinned here where scripts depend on it.
type answerJSON struct {
	Answer    string         `json:"answer"`
	Citations []citationJSON `json:"citations"`
	Timings   timingsJSON    `json:"timings"`
}

type citationJSON struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	KnowledgeBase string  `json:"knowledge_base,omitempty"`
	ChunkIndex    int     `json:"chunk_index"`
	Excerpt       string  `json:"excerpt"`
	Score         float64 `json:"score"`
}

type timingsJSON struct {
	RetrievalMS int64 `json:"retrieval_ms"`
	LLMMS       int64 `json:"llm_ms"`
	TotalMS     int64 `json:"total_ms"`
}

func printAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := answerJSON{
		Answer:    answer.Text,
		Citations: make([]citationJSON, 0, len(answer.Citations)),
		Timings: timingsJSON{
			RetrievalMS: answer.Timings.Retrieval.Milliseconds(),
			LLMMS:       answer.Timings.LLM.Milliseconds(),
			TotalMS:     answer.Timings.Total.Milliseconds(),
		},
	}
	for _, c := range answer.Citations {
		out.Citations = append(out.Citations, citationJSON{
			DocumentID:    c.DocumentID,
			DocumentTitle: c.DocumentTitle,
			KnowledgeBase: c.KnowledgeBase,
			ChunkIndex:    c.ChunkIndex,
			Excerpt:       c.Excerpt,
			Score:         c.Score,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
