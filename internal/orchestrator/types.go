package orchestrator

import (
	"strings"
	"time"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/classifier"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/index"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlguard"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// ErrCodeEmptyQuestion flags a request with no question text.
const ErrCodeEmptyQuestion types.ErrorCode = "ORCHESTRATOR_EMPTY_QUESTION"

// Question is one natural-language question about the catalog.
type Question struct {
	Text string `json:"text"`
}

// NewQuestion creates a Question with surrounding whitespace removed.
func NewQuestion(text string) Question {
	return Question{Text: strings.TrimSpace(text)}
}

// Validate checks the question carries any text at all.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return types.NewError(ErrCodeEmptyQuestion, "question cannot be empty")
	}
	return nil
}

// PathStatus summarizes how the chosen path fared.
type PathStatus string

const (
	// PathStatusOK means the path produced its full evidence.
	PathStatusOK PathStatus = "ok"

	// PathStatusDegraded means the answer stands on partial evidence,
	// such as a hybrid run whose ranked title had no synopsis.
	PathStatusDegraded PathStatus = "degraded"

	// PathStatusFailed means the path could not produce an answer.
	PathStatusFailed PathStatus = "failed"
)

// ResponseBundle is the complete outcome of one question: the routing
// decision, whatever evidence the path produced, and the composed
// answer. Front ends render from this alone.
type ResponseBundle struct {
	ID             string                    `json:"id"`
	Question       Question                  `json:"question"`
	Classification classifier.Classification `json:"classification"`
	Status         RequestStatus             `json:"status"`
	PathStatus     PathStatus                `json:"path_status"`

	// SQL evidence, present for SQL and HYBRID paths.
	Statement string            `json:"statement,omitempty"`
	Verdict   *sqlguard.Verdict `json:"verdict,omitempty"`
	Attempts  int               `json:"attempts,omitempty"`

	Execution *catalog.ExecutionResult `json:"execution,omitempty"`

	// Document evidence, present for RAG and fused HYBRID paths.
	Documents []index.RetrievedDocument `json:"documents,omitempty"`
	Entity    string                    `json:"entity,omitempty"`

	Answer string `json:"answer,omitempty"`

	// Failure carries the typed error when Status is failed. Error
	// holds its rendered form for serialization.
	Failure *types.AgentError `json:"-"`
	Error   string            `json:"error,omitempty"`

	Duration time.Duration `json:"duration"`
}
