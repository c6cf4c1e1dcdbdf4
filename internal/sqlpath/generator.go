package sqlpath

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
)

// modelFamily selects the prompt format. Small SQL models are
// sensitive to their fine-tuning template, so the generator speaks
// each family's dialect instead of one generic prompt.
type modelFamily int

const (
	familyDefault modelFamily = iota
	familyPhi3
	familySQLCoder
)

func detectFamily(model string) modelFamily {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "phi3"):
		return familyPhi3
	case strings.Contains(lower, "sqlcoder"):
		return familySQLCoder
	default:
		return familyDefault
	}
}

const phi3SystemPrompt = `You are a PostgreSQL expert. Your task is to generate ONLY a valid PostgreSQL query.

Rules:
- Use proper table and column names from the schema
- Every non-aggregated column in SELECT must be in GROUP BY
- Use COUNT(*) for counting, SUM() for totals, AVG() for averages
- For "top N" or "most X" queries: use ORDER BY with LIMIT%s
- Use proper JOIN syntax with foreign key relationships
- Generate ONLY the SQL query, no explanations or markdown`

const phi3HybridRule = "\n- CRITICAL: ALWAYS include c.titulo (content title) in SELECT for ranking queries"

const sqlcoderPromptFormat = `### Instructions:
Your task is to convert a question into a SQL query, given a PostgreSQL database schema.
Adhere to these rules:
- **Deliberately go through the question and database schema word by word** to appropriately answer the question
- **Use Table Aliases** to prevent ambiguity. For example, ` + "`SELECT table1.col1, table2.col1 FROM table1 JOIN table2 ON table1.id = table2.id`" + `
- When creating a ratio, always cast the numerator as float
- **CRITICAL PostgreSQL GROUP BY rule**: Every non-aggregated column in SELECT must appear in GROUP BY
- Prefer simple queries over complex window functions when possible
- For "most viewed" or "most popular" queries, use COUNT(*), GROUP BY, ORDER BY, and LIMIT%s
- Use COUNT(*) for counting rows, SUM() for totals, AVG() for averages
- Generate ONLY valid PostgreSQL syntax
- Do NOT include explanations, comments, or additional text after the SQL query

### Input:
Generate a SQL query that answers the question ` + "`%s`" + `.
This query will run on a PostgreSQL database whose schema is represented below:
%s

### Response:`

const sqlcoderHybridRule = "\n- **CRITICAL for ranking queries**: ALWAYS include c.titulo (content title) in SELECT clause"

const defaultPromptFormat = `You are a PostgreSQL expert. Generate ONLY a valid SQL query.

Question: %s

Database Schema:
%s

Generate a PostgreSQL query. Rules:
- Every non-aggregated column in SELECT must be in GROUP BY
- Use COUNT(*), SUM(), AVG() for aggregations
- Use ORDER BY with LIMIT for "top N" queries%s
- Output ONLY the SQL query, no explanations

SQL Query:`

const defaultHybridRule = "\n- CRITICAL: Include c.titulo (content title) in SELECT for ranking queries"

// Generator turns a question plus a schema description into a SQL
// statement using a SQL-specialized model.
type Generator struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

// NewGenerator creates a Generator for the given model. A nil logger
// falls back to slog.Default().
func NewGenerator(provider llm.Provider, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Generate produces a cleaned candidate statement. hybrid adds the
// instruction to always project the content title so downstream title
// extraction has a column to read. feedback carries the reason a
// previous attempt failed and may be empty on the first attempt.
func (g *Generator) Generate(ctx context.Context, question, schema string, hybrid bool, feedback string) (string, error) {
	req := llm.CompletionRequest{
		Model:       g.model,
		Messages:    g.buildMessages(question, schema, hybrid, feedback),
		Temperature: 0,
		MaxTokens:   500,
	}
	if detectFamily(g.model) == familyPhi3 {
		req.TopK = 5
		req.TopP = 0.7
		req.RepeatPenalty = 1.0
	}

	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	raw := resp.Text()
	g.logger.Debug("raw statement generated",
		"model", g.model,
		"response", raw)

	statement := CleanResponse(raw)
	if statement == "" {
		return "", llm.NewEmptyResponseError(g.model)
	}
	return statement, nil
}

func (g *Generator) buildMessages(question, schema string, hybrid bool, feedback string) []llm.Message {
	switch detectFamily(g.model) {
	case familyPhi3:
		hybridRule := ""
		if hybrid {
			hybridRule = phi3HybridRule
		}
		user := fmt.Sprintf("Question: %s\n\nDatabase Schema:\n%s\n\nGenerate a PostgreSQL query to answer the question. Output ONLY the SQL query:",
			question, schema)
		return []llm.Message{
			llm.NewSystemMessage(fmt.Sprintf(phi3SystemPrompt, hybridRule)),
			llm.NewUserMessage(withFeedback(user, feedback)),
		}

	case familySQLCoder:
		hybridRule := ""
		if hybrid {
			hybridRule = sqlcoderHybridRule
		}
		prompt := fmt.Sprintf(sqlcoderPromptFormat, hybridRule, question, schema)
		return []llm.Message{
			llm.NewUserMessage(withFeedback(prompt, feedback)),
		}

	default:
		hybridRule := ""
		if hybrid {
			hybridRule = defaultHybridRule
		}
		prompt := fmt.Sprintf(defaultPromptFormat, question, schema, hybridRule)
		return []llm.Message{
			llm.NewUserMessage(withFeedback(prompt, feedback)),
		}
	}
}

// withFeedback appends the failure reason from the previous attempt so
// the model can correct the statement instead of repeating it.
func withFeedback(prompt, feedback string) string {
	if feedback == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nThe previous query failed: %s\nGenerate a corrected query.", prompt, feedback)
}

// CleanResponse normalizes raw model output into a bare statement:
// markdown fences and trailing semicolons go, whitespace runs collapse
// to single spaces, and leading prose is dropped by seeking the start
// of the statement.
func CleanResponse(raw string) string {
	statement := strings.TrimSpace(raw)

	if idx := strings.Index(statement, "```sql"); idx != -1 {
		statement = statement[idx+len("```sql"):]
		if end := strings.Index(statement, "```"); end != -1 {
			statement = statement[:end]
		}
	} else if strings.Contains(statement, "```") {
		statement = strings.ReplaceAll(statement, "```sql", "")
		statement = strings.ReplaceAll(statement, "```", "")
	}

	statement = strings.TrimSpace(statement)
	for strings.HasSuffix(statement, ";") {
		statement = strings.TrimSpace(strings.TrimSuffix(statement, ";"))
	}

	statement = strings.Join(strings.Fields(statement), " ")

	upper := strings.ToUpper(statement)
	if strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH") {
		return statement
	}

	// Models sometimes preface the statement with prose. Keep whichever
	// statement introducer appears first.
	selectPos := strings.Index(upper, "SELECT")
	withPos := strings.Index(upper, "WITH ")
	start := selectPos
	if withPos != -1 && (start == -1 || withPos < start) {
		start = withPos
	}
	if start == -1 {
		return statement
	}
	return statement[start:]
}
