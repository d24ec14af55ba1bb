package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type Repos struct {
	Documents repos.DocumentRepo
	Versions  repos.DocumentVersionRepo
	Chunks    repos.DocumentChunkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Documents: repos.NewDocumentRepo(db, log),
		Versions:  repos.NewDocumentVersionRepo(db, log),
		Chunks:    repos.NewDocumentChunkRepo(db, log),
	}
}
