package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type DocumentRepo interface {
	Create(dbc dbctx.Context, doc *types.Document) (*types.Document, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	// LockByID reads the row with SELECT ... FOR UPDATE. Must run inside a transaction.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error)
	ListIDs(dbc dbctx.Context) ([]uuid.UUID, error)
	UpdateContent(dbc dbctx.Context, id uuid.UUID, content string, meta types.DocumentMetadata) error
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentRepo"),
	}
}

func (r *documentRepo) Create(dbc dbctx.Context, doc *types.Document) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if doc == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var doc types.Document
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&doc).Error; err != nil {
		return nil, err
	}
	if doc.ID == uuid.Nil {
		return nil, nil
	}
	return &doc, nil
}

func (r *documentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var doc types.Document
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&doc).Error; err != nil {
		return nil, err
	}
	if doc.ID == uuid.Nil {
		return nil, nil
	}
	return &doc, nil
}

func (r *documentRepo) ListIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *documentRepo) UpdateContent(dbc dbctx.Context, id uuid.UUID, content string, meta types.DocumentMetadata) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"metadata":   meta,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
