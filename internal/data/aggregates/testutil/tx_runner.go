package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// It supports rollback/failure injection. With Inner set the body runs inside a real
// transaction and an injected commit failure rolls it back; without Inner no DB is
// touched.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	inner := r.Inner
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if inner != nil {
		err = inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
