package documents

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// DocumentVersionRepo is append-only: there is no update or delete.
type DocumentVersionRepo interface {
	Create(dbc dbctx.Context, v *types.DocumentVersion) (*types.DocumentVersion, error)
	ExistsForVersion(dbc dbctx.Context, docID uuid.UUID, version string) (bool, error)
	HasBaseline(dbc dbctx.Context, docID uuid.UUID) (bool, error)
	GetByID(dbc dbctx.Context, docID, versionID uuid.UUID) (*types.DocumentVersion, error)
	// ListByDocument returns snapshots newest first.
	ListByDocument(dbc dbctx.Context, docID uuid.UUID) ([]*types.DocumentVersion, error)
	CountByDocument(dbc dbctx.Context, docID uuid.UUID) (int64, error)
}

type documentVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentVersionRepo(db *gorm.DB, baseLog *logger.Logger) DocumentVersionRepo {
	return &documentVersionRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentVersionRepo"),
	}
}

func (r *documentVersionRepo) Create(dbc dbctx.Context, v *types.DocumentVersion) (*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if v == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

func (r *documentVersionRepo) ExistsForVersion(dbc dbctx.Context, docID uuid.UUID, version string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if docID == uuid.Nil || version == "" {
		return false, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DocumentVersion{}).
		Where("document_id = ? AND version = ?", docID, version).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *documentVersionRepo) HasBaseline(dbc dbctx.Context, docID uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if docID == uuid.Nil {
		return false, nil
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DocumentVersion{}).
		Where("document_id = ? AND is_baseline = ?", docID, true).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *documentVersionRepo) GetByID(dbc dbctx.Context, docID, versionID uuid.UUID) (*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if docID == uuid.Nil || versionID == uuid.Nil {
		return nil, nil
	}
	var v types.DocumentVersion
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND document_id = ?", versionID, docID).
		Limit(1).
		Find(&v).Error; err != nil {
		return nil, err
	}
	if v.ID == uuid.Nil {
		return nil, nil
	}
	return &v, nil
}

func (r *documentVersionRepo) ListByDocument(dbc dbctx.Context, docID uuid.UUID) ([]*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DocumentVersion
	if docID == uuid.Nil {
		return out, nil
	}
	// a baseline and the upload that caused it share a transaction; the upload sorts first
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", docID).
		Order("created_at DESC, is_baseline ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentVersionRepo) CountByDocument(dbc dbctx.Context, docID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.DocumentVersion{}).
		Where("document_id = ?", docID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
