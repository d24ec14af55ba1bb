package aggregates

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

// TxRunner is the single transaction boundary for document writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewGormTxRunner returns a runner backed by gorm transactions. opts, when given, sets the
// isolation level of every transaction it opens.
func NewGormTxRunner(db *gorm.DB, opts ...*sql.TxOptions) TxRunner {
	r := &gormTxRunner{db: db}
	if len(opts) > 0 {
		r.opts = opts[0]
	}
	return r
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return apperrors.New(apperrors.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	ctx, span := otel.Tracer("github.com/yungbote/docvault-backend/internal/data/aggregates").Start(ctx, "db.transaction")
	defer span.End()

	var txOpts []*sql.TxOptions
	if r.opts != nil {
		txOpts = append(txOpts, r.opts)
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, txOpts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rolled back")
	}
	return err
}
