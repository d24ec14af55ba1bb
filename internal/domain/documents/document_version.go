package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const BaselineChangeSummary = "Initial version snapshot"

// DocumentVersion is an immutable snapshot of a document's content and metadata.
type DocumentVersion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"version_id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index:idx_document_version_doc_version,priority:1" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Version       string           `gorm:"column:version;not null;index:idx_document_version_doc_version,priority:2" json:"version"`
	ChangeSummary string           `gorm:"column:change_summary;type:text;not null" json:"change_summary"`
	Content       string           `gorm:"column:content;type:text" json:"content,omitempty"`
	Metadata      DocumentMetadata `gorm:"column:metadata;type:jsonb" json:"metadata"`

	FilePath *string `gorm:"column:file_path" json:"file_path,omitempty"`
	FileMime *string `gorm:"column:file_mime" json:"file_mime,omitempty"`
	FileSize *int64  `gorm:"column:file_size" json:"file_size,omitempty"`

	CreatedBy  *uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	IsBaseline bool       `gorm:"column:is_baseline;not null;default:false" json:"is_baseline"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DocumentVersion) TableName() string { return "document_version" }

func (v *DocumentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate keeps snapshots append-only.
func (v *DocumentVersion) BeforeUpdate(tx *gorm.DB) error {
	return ErrSnapshotImmutable
}
