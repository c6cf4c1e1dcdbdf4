package index

import (
	"time"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Document is a synopsis stored in the index. The ID is the stable document
// name (the source file stem), the title is the human-readable form used for
// exact-title lookups on the hybrid path.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocument creates a Document with the current timestamp.
func NewDocument(id, title, text string) *Document {
	return &Document{
		ID:        id,
		Title:     title,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Validate ensures the Document has valid fields.
func (d *Document) Validate() error {
	if d.ID == "" {
		return types.NewError(ErrCodeIndexStoreFailed, "document ID cannot be empty")
	}
	if d.Title == "" {
		return types.NewError(ErrCodeIndexStoreFailed, "document title cannot be empty")
	}
	if d.Text == "" {
		return types.NewError(ErrCodeIndexStoreFailed, "document text cannot be empty")
	}
	return nil
}

// RetrievedDocument is a search hit: the document plus its similarity score.
// Scores are cosine similarities in [0,1], higher is closer.
type RetrievedDocument struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
