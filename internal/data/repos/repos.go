package repos

import (
	"github.com/yungbote/docvault-backend/internal/data/repos/documents"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type DocumentRepo = documents.DocumentRepo
type DocumentVersionRepo = documents.DocumentVersionRepo
type DocumentChunkRepo = documents.DocumentChunkRepo

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, baseLog)
}
func NewDocumentVersionRepo(db *gorm.DB, baseLog *logger.Logger) DocumentVersionRepo {
	return documents.NewDocumentVersionRepo(db, baseLog)
}
func NewDocumentChunkRepo(db *gorm.DB, baseLog *logger.Logger) DocumentChunkRepo {
	return documents.NewDocumentChunkRepo(db, baseLog)
}
