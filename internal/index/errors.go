package index

import "github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"

// Document index error codes
const (
	ErrCodeIndexUnavailable  types.ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeDocumentNotFound  types.ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeIndexStoreFailed  types.ErrorCode = "INDEX_STORE_FAILED"
	ErrCodeIndexSearchFailed types.ErrorCode = "INDEX_SEARCH_FAILED"
	ErrCodeInvalidConfig     types.ErrorCode = "INVALID_INDEX_CONFIG"
	ErrCodeIngestFailed      types.ErrorCode = "INGEST_FAILED"
)
