package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/classifier"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
)

const composerSystemPrompt = "You are a helpful AI assistant for a streaming platform."

// docPreviewLimit caps how much of each synopsis reaches the
// composition prompt.
const docPreviewLimit = 500

// composeTemperature keeps answers conversational; the deterministic
// settings stay on the SQL and classification models.
const composeTemperature = 0.7

// Composer turns gathered evidence into the final answer text using
// the conversation model.
type Composer struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// NewComposer creates a Composer for the given conversation model. A
// nil logger falls back to slog.Default().
func NewComposer(provider llm.Provider, model string, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Compose builds the evidence prompt for the bundle's path, prepends
// prior exchanges, and asks the conversation model for the answer.
// history is caller-owned and ordered oldest first.
func (c *Composer) Compose(ctx context.Context, bundle *ResponseBundle, history []*ResponseBundle) (string, error) {
	messages := make([]llm.Message, 0, 2*len(history)+2)
	messages = append(messages, llm.NewSystemMessage(composerSystemPrompt))

	for _, prior := range history {
		if prior == nil || prior.Answer == "" {
			continue
		}
		messages = append(messages,
			llm.NewUserMessage(prior.Question.Text),
			llm.NewAssistantMessage(prior.Answer),
		)
	}

	messages = append(messages, llm.NewUserMessage(c.buildPrompt(bundle)))

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: composeTemperature,
	})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", llm.NewEmptyResponseError(c.model)
	}
	return answer, nil
}

func (c *Composer) buildPrompt(bundle *ResponseBundle) string {
	evidence := buildEvidence(bundle)

	if bundle.Classification.Path == classifier.PathRAG {
		return fmt.Sprintf(`The user asked: %q

%s

Provide a clear, informative answer based on the content information above.
Be concise but include key details about the content.

Response:`, bundle.Question.Text, evidence)
	}

	return fmt.Sprintf(`The user asked: %q

%s

Provide a brief, friendly summary combining the information above.
Be concise but informative. If there are many results, highlight the most relevant ones.

Response:`, bundle.Question.Text, evidence)
}

// buildEvidence renders the bundle's SQL and document evidence as the
// context block of the composition prompt.
func buildEvidence(bundle *ResponseBundle) string {
	var parts []string

	if bundle.Execution != nil {
		parts = append(parts, fmt.Sprintf("SQL Query executed:\n%s\n\nResults:\n%s",
			bundle.Statement, catalog.FormatResult(bundle.Execution)))
	}

	if len(bundle.Documents) > 0 {
		var sb strings.Builder
		sb.WriteString("Content information from the synopsis library:\n")
		for i, doc := range bundle.Documents {
			sb.WriteString(fmt.Sprintf("\n[%d] %s (relevance: %.2f):\n%s\n",
				i+1, doc.Title, doc.Score, previewText(doc.Text)))
		}
		parts = append(parts, sb.String())
	}

	if len(parts) == 0 {
		return "No supporting information was found for this question."
	}
	return strings.Join(parts, "\n\n")
}

// previewText truncates synopses by rune so multibyte titles survive.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= docPreviewLimit {
		return text
	}
	return string(runes[:docPreviewLimit]) + "..."
}
