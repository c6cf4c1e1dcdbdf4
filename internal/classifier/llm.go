package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
)

// classificationRules is the system prompt for the LLM strategy. The
// distinction that matters most in practice is SQL vs HYBRID: a
// ranking question is only HYBRID when it also asks what the content
// is about.
const classificationRules = `Classify queries: SQL, RAG, or HYBRID.

SQL - wants NAME/NUMBER/RANK only, no description:
"Most active user?" -> SQL
"Película más vista" -> SQL
"Top 10" -> SQL
"Which is most viewed?" -> SQL

RAG - asks about SPECIFIC named content:
"What is Aventuras Galácticas about?" -> RAG
"De qué trata Terror Nocturno?" -> RAG

HYBRID - wants content ranking AND description (must have "content/" + "trata/about/describe"):
"De qué trata la película más vista?" -> HYBRID
"What is the most viewed series about?" -> HYBRID
"Tell me about the top rated película" -> HYBRID

Rules:
- NO "trata/about/describe" = SQL (even with "más/most")
- HYBRID only for content with description request
- Users/series/episodes asking for description = SQL (not in RAG)

Answer with exactly one word: SQL, RAG, or HYBRID.`

// LLMClassifier labels questions with a small constrained completion.
// A tiny token budget and near-greedy sampling keep it fast and
// repeatable.
type LLMClassifier struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// NewLLMClassifier creates a classifier that asks the given model for
// a one-word label. A nil logger falls back to slog.Default().
func NewLLMClassifier(provider llm.Provider, model string, logger *slog.Logger) *LLMClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMClassifier{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Classify asks the model for a path label and parses it by precedence
// HYBRID, RAG, SQL. Unparseable replies and provider errors both fall
// back to SQL without failing the request.
func (c *LLMClassifier) Classify(ctx context.Context, question string) (Classification, error) {
	req := llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			llm.NewSystemMessage(classificationRules),
			llm.NewUserMessage(fmt.Sprintf("Query: %q\nClassification:", question)),
		},
		Temperature:   0,
		MaxTokens:     6,
		TopP:          0.5,
		TopK:          3,
		RepeatPenalty: 1.0,
	}

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		c.logger.Warn("classification completion failed, defaulting to SQL",
			"model", c.model,
			"error", err)
		return fallback(), nil
	}

	reply := strings.TrimSpace(resp.Text())
	path, ok := parseLabel(reply)
	if !ok {
		c.logger.Warn("unclear classification reply, defaulting to SQL",
			"model", c.model,
			"reply", reply)
		return fallback(), nil
	}

	c.logger.Debug("question classified",
		"path", path,
		"reply", reply)
	return Classification{Path: path, Rationale: reply}, nil
}

// parseLabel extracts a path label from a model reply. HYBRID is
// checked first because its replies often contain SQL or RAG as
// substrings of an explanation.
func parseLabel(reply string) (QueryPath, bool) {
	upper := strings.ToUpper(reply)
	switch {
	case strings.Contains(upper, string(PathHybrid)):
		return PathHybrid, true
	case strings.Contains(upper, string(PathRAG)):
		return PathRAG, true
	case strings.Contains(upper, string(PathSQL)):
		return PathSQL, true
	default:
		return "", false
	}
}
