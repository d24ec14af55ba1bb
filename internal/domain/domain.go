package domain

import "github.com/yungbote/docvault-backend/internal/domain/documents"

type Document = documents.Document
type DocumentMetadata = documents.DocumentMetadata
type DocumentVersion = documents.DocumentVersion
type DocumentChunk = documents.DocumentChunk

const (
	DefaultVersion        = documents.DefaultVersion
	BaselineChangeSummary = documents.BaselineChangeSummary
)
