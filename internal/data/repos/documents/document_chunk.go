package documents

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type DocumentChunkRepo interface {
	Create(dbc dbctx.Context, chunks []*types.DocumentChunk) ([]*types.DocumentChunk, error)
	DeleteByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error)
	ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*types.DocumentChunk, error)
	CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error)
}

type documentChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentChunkRepo(db *gorm.DB, baseLog *logger.Logger) DocumentChunkRepo {
	return &documentChunkRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentChunkRepo"),
	}
}

func (r *documentChunkRepo) Create(dbc dbctx.Context, chunks []*types.DocumentChunk) ([]*types.DocumentChunk, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return []*types.DocumentChunk{}, nil
	}

	// Keep batches small because Content and Embedding are large
	const batchSize = 100

	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(chunks, batchSize).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *documentChunkRepo) DeleteByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if docID == uuid.Nil {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", docID).
		Delete(&types.DocumentChunk{})
	return res.RowsAffected, res.Error
}

func (r *documentChunkRepo) ListByDocumentID(dbc dbctx.Context, docID uuid.UUID) ([]*types.DocumentChunk, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DocumentChunk
	if docID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", docID).
		Order("chunk_index ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentChunkRepo) CountByDocumentID(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DocumentChunk{}).
		Where("document_id = ?", docID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
