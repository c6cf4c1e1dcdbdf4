// Package classifier routes natural-language questions to one of the
// three answer paths. Classification never fails a request: every
// strategy falls back to the SQL path when it cannot produce a
// confident label.
package classifier

import "context"

// QueryPath identifies which answer path a question should take.
type QueryPath string

const (
	// PathSQL answers questions that want a name, number, or ranking
	// straight from the catalog database.
	PathSQL QueryPath = "SQL"
	// PathRAG answers questions about specific named content from the
	// synopsis document index.
	PathRAG QueryPath = "RAG"
	// PathHybrid answers questions that need a database ranking first
	// and a synopsis for the winning title second.
	PathHybrid QueryPath = "HYBRID"
)

// String returns the string representation of the path.
func (p QueryPath) String() string {
	return string(p)
}

// IsValid checks whether the path is one of the three known routes.
func (p QueryPath) IsValid() bool {
	switch p {
	case PathSQL, PathRAG, PathHybrid:
		return true
	default:
		return false
	}
}

// FallbackRationale marks a classification that defaulted to SQL
// because the strategy errored or produced an unparseable label.
const FallbackRationale = "fallback"

// Classification is the routing decision for one question.
type Classification struct {
	Path      QueryPath `json:"path"`
	Rationale string    `json:"rationale,omitempty"`
}

// IsFallback reports whether this classification came from the
// fail-closed default rather than a confident strategy decision.
func (c Classification) IsFallback() bool {
	return c.Rationale == FallbackRationale
}

// Classifier decides the answer path for a question.
type Classifier interface {
	Classify(ctx context.Context, question string) (Classification, error)
}

// fallback is the decision used whenever a strategy cannot commit to
// a label. SQL is the safest default: a database lookup degrades more
// gracefully than a synopsis search for an unknown title.
func fallback() Classification {
	return Classification{Path: PathSQL, Rationale: FallbackRationale}
}
