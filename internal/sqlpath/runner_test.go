package sqlpath

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm/providers"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlguard"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

type execOutcome struct {
	result *catalog.ExecutionResult
	err    error
}

// fakeExecutor replays a fixed sequence of outcomes and records every
// statement it was asked to run.
type fakeExecutor struct {
	outcomes   []execOutcome
	statements []string
}

func (f *fakeExecutor) Execute(ctx context.Context, statement string) (*catalog.ExecutionResult, error) {
	f.statements = append(f.statements, statement)
	if len(f.outcomes) == 0 {
		return &catalog.ExecutionResult{}, nil
	}
	outcome := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return outcome.result, outcome.err
}

type fakeSchema struct {
	text string
	err  error
}

func (f *fakeSchema) Describe(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestRunner(t *testing.T, responses []string, executor *fakeExecutor) (*Runner, *providers.MockProvider) {
	t.Helper()
	provider := providers.NewMockProvider(responses)
	generator := NewGenerator(provider, "llama3.2", nil)
	runner := NewRunner(
		generator,
		sqlguard.New(),
		executor,
		&fakeSchema{text: "CREATE TABLE Usuarios (id INTEGER PRIMARY KEY);"},
		Config{},
		nil,
	)
	return runner, provider
}

func usersCountResult() *catalog.ExecutionResult {
	return &catalog.ExecutionResult{
		Columns:  []string{"count"},
		Rows:     [][]any{{int64(20)}},
		RowCount: 1,
	}
}

func TestRunnerFirstAttemptSucceeds(t *testing.T) {
	executor := &fakeExecutor{outcomes: []execOutcome{{result: usersCountResult()}}}
	runner, _ := newTestRunner(t, []string{"SELECT COUNT(*) FROM Usuarios;"}, executor)

	result, err := runner.Run(context.Background(), "¿Cuántos usuarios hay?", false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "SELECT COUNT(*) FROM Usuarios", result.Statement)
	assert.True(t, result.Verdict.Allowed)
	require.NotNil(t, result.Execution)
	assert.Equal(t, 1, result.Execution.RowCount)
	assert.Empty(t, result.CandidateTitles)

	require.Len(t, executor.statements, 1)
	assert.Equal(t, "SELECT COUNT(*) FROM Usuarios", executor.statements[0])
}

func TestRunnerRejectionThenCorrectedStatement(t *testing.T) {
	executor := &fakeExecutor{outcomes: []execOutcome{{result: usersCountResult()}}}
	runner, provider := newTestRunner(t, []string{
		"DELETE FROM Usuarios",
		"SELECT COUNT(*) FROM Usuarios",
	}, executor)

	result, err := runner.Run(context.Background(), "¿Cuántos usuarios hay?", false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempts)
	assert.True(t, result.Verdict.Allowed)
	require.NotNil(t, result.Execution)

	// The rejected statement never reached the database.
	require.Len(t, executor.statements, 1)
	assert.Equal(t, "SELECT COUNT(*) FROM Usuarios", executor.statements[0])

	// The second generation carried the rejection reason as feedback.
	calls := provider.GetCalls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Request.Messages[0].Content, "DELETE")
	assert.Contains(t, calls[1].Request.Messages[0].Content, "Generate a corrected query.")
}

func TestRunnerSecondRejectionFailsWithoutExecuting(t *testing.T) {
	executor := &fakeExecutor{}
	runner, _ := newTestRunner(t, []string{
		"DROP TABLE Usuarios",
		"DROP TABLE Usuarios CASCADE",
	}, executor)

	result, err := runner.Run(context.Background(), "delete everything", false)
	require.Error(t, err)

	assert.Equal(t, types.SECURITY_REJECTED, types.CodeOf(err))
	assert.Equal(t, 2, result.Attempts)
	assert.False(t, result.Verdict.Allowed)
	assert.Nil(t, result.Execution)
	assert.Empty(t, executor.statements)
}

func TestRunnerRecoverableErrorThenSuccess(t *testing.T) {
	executor := &fakeExecutor{outcomes: []execOutcome{
		{err: types.NewError(types.SQL_MISSING_RELATION, `relation "peliculas" does not exist`)},
		{result: usersCountResult()},
	}}
	runner, provider := newTestRunner(t, []string{
		"SELECT COUNT(*) FROM peliculas",
		"SELECT COUNT(*) FROM Usuarios",
	}, executor)

	result, err := runner.Run(context.Background(), "¿Cuántas películas hay?", false)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempts)
	require.Len(t, executor.statements, 2)

	calls := provider.GetCalls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Request.Messages[0].Content, "peliculas")
}

func TestRunnerRecoverableErrorOnLastAttemptFails(t *testing.T) {
	syntaxErr := types.NewError(types.SQL_SYNTAX_ERROR, "syntax error at or near \"FORM\"")
	executor := &fakeExecutor{outcomes: []execOutcome{
		{err: syntaxErr},
		{err: syntaxErr},
	}}
	runner, _ := newTestRunner(t, []string{
		"SELECT * FORM Usuarios",
		"SELECT * FORM Usuarios",
	}, executor)

	result, err := runner.Run(context.Background(), "list users", false)
	require.Error(t, err)

	assert.Equal(t, types.SQL_SYNTAX_ERROR, types.CodeOf(err))
	assert.Equal(t, 2, result.Attempts)
	assert.Len(t, executor.statements, 2)
}

func TestRunnerTerminalErrorsDoNotRetry(t *testing.T) {
	tests := []struct {
		name string
		err  *types.AgentError
	}{
		{"timeout", types.NewError(types.SQL_TIMEOUT, "query exceeded execution timeout")},
		{"connection", types.NewRetryableError(types.SQL_CONNECTION_FAILED, "connection refused")},
		{"execution", types.NewError(types.SQL_EXECUTION_FAILED, "division by zero")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := &fakeExecutor{outcomes: []execOutcome{{err: tt.err}}}
			runner, provider := newTestRunner(t, []string{"SELECT COUNT(*) FROM Usuarios"}, executor)

			result, err := runner.Run(context.Background(), "count users", false)
			require.Error(t, err)

			assert.Equal(t, tt.err.Code, types.CodeOf(err))
			assert.Equal(t, 1, result.Attempts)
			assert.Len(t, provider.GetCalls(), 1)
		})
	}
}

func TestRunnerExtractsCandidateTitles(t *testing.T) {
	executor := &fakeExecutor{outcomes: []execOutcome{{
		result: &catalog.ExecutionResult{
			Columns: []string{"titulo", "total_visualizaciones"},
			Rows: [][]any{
				{"La Última Frontera", int64(154)},
				{nil, int64(120)},
				{"Terror Nocturno", int64(98)},
				{"   ", int64(4)},
			},
			RowCount: 4,
		},
	}}}
	runner, _ := newTestRunner(t, []string{
		"SELECT c.titulo, COUNT(*) AS total_visualizaciones FROM Contenidos c GROUP BY c.titulo ORDER BY 2 DESC",
	}, executor)

	result, err := runner.Run(context.Background(), "most viewed movies", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"La Última Frontera", "Terror Nocturno"}, result.CandidateTitles)
}

func TestRunnerTitleColumnIsConfigurable(t *testing.T) {
	provider := providers.NewMockProvider([]string{"SELECT name FROM Contenidos"})
	generator := NewGenerator(provider, "llama3.2", nil)
	executor := &fakeExecutor{outcomes: []execOutcome{{
		result: &catalog.ExecutionResult{
			Columns:  []string{"name"},
			Rows:     [][]any{{"Mundos Paralelos"}},
			RowCount: 1,
		},
	}}}

	runner := NewRunner(generator, sqlguard.New(), executor,
		&fakeSchema{text: "schema"},
		Config{TitleColumns: []string{"name"}},
		nil,
	)

	result, err := runner.Run(context.Background(), "top content", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mundos Paralelos"}, result.CandidateTitles)
}

func TestRunnerNoTitleColumn(t *testing.T) {
	executor := &fakeExecutor{outcomes: []execOutcome{{
		result: &catalog.ExecutionResult{
			Columns:  []string{"genero", "total"},
			Rows:     [][]any{{"terror", int64(12)}},
			RowCount: 1,
		},
	}}}
	runner, _ := newTestRunner(t, []string{"SELECT genero, COUNT(*) AS total FROM Contenidos GROUP BY genero"}, executor)

	result, err := runner.Run(context.Background(), "content by genre", true)
	require.NoError(t, err)
	assert.Empty(t, result.CandidateTitles)
}

func TestRunnerSchemaErrorPropagates(t *testing.T) {
	provider := providers.NewMockProvider([]string{"SELECT 1"})
	generator := NewGenerator(provider, "llama3.2", nil)
	schemaErr := types.NewRetryableError(types.SQL_CONNECTION_FAILED, "failed to reach catalog database")

	runner := NewRunner(generator, sqlguard.New(), &fakeExecutor{},
		&fakeSchema{err: schemaErr}, Config{}, nil)

	_, err := runner.Run(context.Background(), "count users", false)
	require.Error(t, err)
	assert.Equal(t, types.SQL_CONNECTION_FAILED, types.CodeOf(err))
	assert.Empty(t, provider.GetCalls())
}

func TestRunnerGeneratorErrorPropagates(t *testing.T) {
	provider := providers.NewMockProvider(nil)
	provider.SetError(errors.New("model not loaded"))
	generator := NewGenerator(provider, "llama3.2", nil)

	runner := NewRunner(generator, sqlguard.New(), &fakeExecutor{},
		&fakeSchema{text: "schema"}, Config{}, nil)

	result, err := runner.Run(context.Background(), "count users", false)
	require.Error(t, err)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunnerHonorsMaxAttempts(t *testing.T) {
	syntaxErr := types.NewError(types.SQL_SYNTAX_ERROR, "bad syntax")
	executor := &fakeExecutor{outcomes: []execOutcome{
		{err: syntaxErr},
		{err: syntaxErr},
		{result: usersCountResult()},
	}}

	provider := providers.NewMockProvider([]string{"SELECT COUNT(*) FROM Usuarios"})
	generator := NewGenerator(provider, "llama3.2", nil)
	runner := NewRunner(generator, sqlguard.New(), executor,
		&fakeSchema{text: "schema"},
		Config{MaxAttempts: 3},
		nil,
	)

	result, err := runner.Run(context.Background(), "count users", false)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempts)
	assert.Len(t, executor.statements, 3)
}
