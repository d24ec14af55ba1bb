package aggregates

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = NewLogHooks(d.Log)
	}
	return d
}

// ExecuteWrite runs fn in one transaction and maps the outcome to a coded error.
func ExecuteWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = string(apperrors.CodeOf(mapped))
		if status == "" {
			status = "failure"
		}
		if apperrors.IsCode(mapped, apperrors.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}
