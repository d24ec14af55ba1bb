package documents

import (
	"gorm.io/gorm"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	"github.com/yungbote/docvault-backend/internal/data/repos"
	"github.com/yungbote/docvault-backend/internal/modules/extraction"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner aggregates.TxRunner
	Hooks  aggregates.Hooks

	Documents repos.DocumentRepo
	Versions  repos.DocumentVersionRepo
	Chunks    repos.DocumentChunkRepo

	// Optional: without an extractor only plain-text files can be ingested.
	Extractor *extraction.Extractor
	Adapter   *indexing.Adapter
}

type Usecases struct {
	deps      UsecasesDeps
	reindexer *Reindexer
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return Usecases{
		deps: deps,
		reindexer: NewReindexer(ReindexerDeps{
			DB:        deps.DB,
			Log:       deps.Log,
			Runner:    deps.Runner,
			Hooks:     deps.Hooks,
			Documents: deps.Documents,
			Versions:  deps.Versions,
			Chunks:    deps.Chunks,
			Adapter:   deps.Adapter,
		}),
	}
}

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	d := u.deps
	d.Log = log
	return New(d)
}

func (u Usecases) Reindexer() *Reindexer { return u.reindexer }

func (u Usecases) baseDeps() aggregates.BaseDeps {
	return aggregates.BaseDeps{
		DB:     u.deps.DB,
		Log:    u.deps.Log,
		Runner: u.deps.Runner,
		Hooks:  u.deps.Hooks,
	}
}
