package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_chunk_doc_index,priority:1" json:"document_id"`
	Document   *Document `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	ChunkIndex int    `gorm:"column:chunk_index;not null;uniqueIndex:idx_document_chunk_doc_index,priority:2" json:"chunk_index"`
	Content    string `gorm:"column:content;type:text;not null" json:"content"`

	// nil is stored as NULL: the chunk has no computed embedding
	Embedding  *pgvector.Vector `gorm:"column:embedding;type:vector" json:"-"`
	TokenCount *int             `gorm:"column:token_count" json:"token_count,omitempty"`
	Metadata   datatypes.JSON   `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DocumentChunk) TableName() string { return "document_chunk" }

func (c *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
