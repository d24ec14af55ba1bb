package db

import (
	"fmt"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Document{},
		&types.DocumentVersion{},
		&types.DocumentChunk{},
	)
}

// EnsureDocumentIndexes creates the indexes AutoMigrate cannot express. Both statements
// are valid on Postgres and SQLite.
func EnsureDocumentIndexes(db *gorm.DB) error {
	// at most one baseline snapshot per document
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_document_version_one_baseline
		ON document_version(document_id)
		WHERE is_baseline = true;
	`).Error; err != nil {
		return fmt.Errorf("create idx_document_version_one_baseline: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_document_version_created_at ON document_version(document_id, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_document_version_created_at: %w", err)
	}
	return nil
}
