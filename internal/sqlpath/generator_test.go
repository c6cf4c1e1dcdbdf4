package sqlpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm/providers"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

func TestDetectFamily(t *testing.T) {
	tests := []struct {
		model string
		want  modelFamily
	}{
		{"phi3", familyPhi3},
		{"phi3:mini", familyPhi3},
		{"Phi3:14b", familyPhi3},
		{"sqlcoder:7b", familySQLCoder},
		{"SQLCoder", familySQLCoder},
		{"llama3.2", familyDefault},
		{"", familyDefault},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, detectFamily(tt.model))
		})
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  "SELECT COUNT(*) FROM Usuarios",
			want: "SELECT COUNT(*) FROM Usuarios",
		},
		{
			name: "sql code fence",
			raw:  "```sql\nSELECT titulo FROM Contenidos\n```",
			want: "SELECT titulo FROM Contenidos",
		},
		{
			name: "bare code fence",
			raw:  "```\nSELECT id FROM Usuarios\n```",
			want: "SELECT id FROM Usuarios",
		},
		{
			name: "trailing semicolons",
			raw:  "SELECT COUNT(*) FROM Usuarios;;",
			want: "SELECT COUNT(*) FROM Usuarios",
		},
		{
			name: "whitespace runs collapse",
			raw:  "SELECT  c.titulo,\n       COUNT(*)\nFROM   Contenidos c",
			want: "SELECT c.titulo, COUNT(*) FROM Contenidos c",
		},
		{
			name: "prose before statement",
			raw:  "Here is the query you asked for: SELECT COUNT(*) FROM Usuarios",
			want: "SELECT COUNT(*) FROM Usuarios",
		},
		{
			name: "cte preserved",
			raw:  "WITH vistas AS (SELECT contenido_id FROM Visualizaciones) SELECT COUNT(*) FROM vistas",
			want: "WITH vistas AS (SELECT contenido_id FROM Visualizaciones) SELECT COUNT(*) FROM vistas",
		},
		{
			name: "prose before cte",
			raw:  "Sure! WITH top AS (SELECT 1) SELECT * FROM top",
			want: "WITH top AS (SELECT 1) SELECT * FROM top",
		},
		{
			name: "lowercase select found",
			raw:  "the answer is: select 1",
			want: "select 1",
		},
		{
			name: "no statement at all",
			raw:  "I cannot answer that",
			want: "I cannot answer that",
		},
		{
			name: "empty",
			raw:  "   \n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.raw))
		})
	}
}

func TestGeneratorPhi3Request(t *testing.T) {
	provider := providers.NewMockProvider([]string{"SELECT COUNT(*) FROM Usuarios;"})
	g := NewGenerator(provider, "phi3:mini", nil)

	statement, err := g.Generate(context.Background(), "¿Cuántos usuarios hay?", "CREATE TABLE Usuarios (id INTEGER PRIMARY KEY);", false, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM Usuarios", statement)

	calls := provider.GetCalls()
	require.Len(t, calls, 1)

	req := calls[0].Request
	assert.Equal(t, "phi3:mini", req.Model)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, 5, req.TopK)
	assert.Equal(t, 0.7, req.TopP)
	assert.Equal(t, 1.0, req.RepeatPenalty)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "PostgreSQL expert")
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "¿Cuántos usuarios hay?")
	assert.Contains(t, req.Messages[1].Content, "CREATE TABLE Usuarios")
}

func TestGeneratorSQLCoderRequest(t *testing.T) {
	provider := providers.NewMockProvider([]string{"```sql\nSELECT 1\n```"})
	g := NewGenerator(provider, "sqlcoder:7b", nil)

	statement, err := g.Generate(context.Background(), "count users", "CREATE TABLE Usuarios (id INTEGER);", false, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", statement)

	calls := provider.GetCalls()
	require.Len(t, calls, 1)

	req := calls[0].Request
	// SQLCoder keeps its fine-tuning template inside a single message.
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "### Instructions:")
	assert.Contains(t, req.Messages[0].Content, "### Response:")
	assert.Zero(t, req.TopK)
}

func TestGeneratorHybridInstruction(t *testing.T) {
	models := []string{"phi3:mini", "sqlcoder:7b", "llama3.2"}

	for _, model := range models {
		t.Run(model, func(t *testing.T) {
			provider := providers.NewMockProvider([]string{"SELECT c.titulo FROM Contenidos c"})
			g := NewGenerator(provider, model, nil)

			_, err := g.Generate(context.Background(), "most viewed movie", "schema", true, "")
			require.NoError(t, err)

			calls := provider.GetCalls()
			require.Len(t, calls, 1)

			var all string
			for _, msg := range calls[0].Request.Messages {
				all += msg.Content
			}
			assert.Contains(t, all, "c.titulo")

			// The instruction only appears for ranked-description runs.
			provider.Reset()
			provider.SetResponses([]string{"SELECT 1"})
			_, err = g.Generate(context.Background(), "most viewed movie", "schema", false, "")
			require.NoError(t, err)

			all = ""
			for _, msg := range provider.GetCalls()[0].Request.Messages {
				all += msg.Content
			}
			assert.NotContains(t, all, "c.titulo")
		})
	}
}

func TestGeneratorFeedbackAppended(t *testing.T) {
	provider := providers.NewMockProvider([]string{"SELECT COUNT(*) FROM Usuarios"})
	g := NewGenerator(provider, "llama3.2", nil)

	_, err := g.Generate(context.Background(), "count users", "schema",
		false, `dangerous keyword "DROP" detected, only SELECT queries are allowed`)
	require.NoError(t, err)

	calls := provider.GetCalls()
	require.Len(t, calls, 1)
	content := calls[0].Request.Messages[0].Content
	assert.Contains(t, content, "The previous query failed:")
	assert.Contains(t, content, `dangerous keyword "DROP"`)
	assert.Contains(t, content, "Generate a corrected query.")
}

func TestGeneratorEmptyResponse(t *testing.T) {
	provider := providers.NewMockProvider([]string{"   "})
	g := NewGenerator(provider, "llama3.2", nil)

	_, err := g.Generate(context.Background(), "count users", "schema", false, "")
	require.Error(t, err)
	assert.Equal(t, llm.ErrEmptyResponse, types.CodeOf(err))
}

func TestGeneratorProviderErrorPropagates(t *testing.T) {
	provider := providers.NewMockProvider(nil)
	provider.SetError(llm.NewProviderUnavailableError("ollama", nil))

	g := NewGenerator(provider, "llama3.2", nil)
	_, err := g.Generate(context.Background(), "count users", "schema", false, "")

	require.Error(t, err)
	assert.Equal(t, llm.ErrProviderUnavailable, types.CodeOf(err))
}
