package expansion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neurocosci/neuro-agent/internal/bedrock"
	"github.com/rs/zerolog/log"
)

// Generator is the single-turn generation call the expander needs.
type Generator interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

type Expander struct {
	client Generator
}

func NewExpander(client Generator) *Expander {
	return &Expander{
		client: client,
	}
}

const maxExpansions = 3

// Expand rewrites a research question into up to 3 technical variants.
// The original question is always first, and expansion is best-effort:
// any transport or parse failure falls back to the original question alone.
func (e *Expander) Expand(ctx context.Context, question string) []string {
	prompt := fmt.Sprintf(`You are a biomedical search expert.
Rewrite this research question into 3 alternative versions using:
- Technical/scientific terminology (MeSH terms, gene names, pathway names)
- Synonyms used in academic papers
- Related biological concepts
Return ONLY a JSON array of 3 strings. No explanation, no markdown.
Question: "%s"
Example: ["technical version 1", "technical version 2", "technical version 3"]`, question)

	response, err := e.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   300,
		Temperature: 0.2, // Low temperature for consistent expansions
	})
	if err != nil {
		log.Warn().Err(err).Msg("Query expansion failed, using original question")
		return []string{question}
	}

	expansions, err := parseExpansions(response.Content)
	if err != nil {
		log.Warn().Err(err).Str("content", response.Content).Msg("Unparsable expansion output, using original question")
		return []string{question}
	}

	if len(expansions) > maxExpansions {
		expansions = expansions[:maxExpansions]
	}

	log.Info().
		Str("question", question).
		Strs("expansions", expansions).
		Msg("Query expanded")

	return append([]string{question}, expansions...)
}

// parseExpansions strips any code-fence markup the model may wrap the
// output in and parses it as a JSON string array.
func parseExpansions(content string) ([]string, error) {
	text := strings.TrimSpace(content)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	var expansions []string
	if err := json.Unmarshal([]byte(text), &expansions); err != nil {
		return nil, fmt.Errorf("expansion output is not a JSON string array: %w", err)
	}

	return expansions, nil
}
