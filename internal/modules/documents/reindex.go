package documents

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	"github.com/yungbote/docvault-backend/internal/data/repos"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	"github.com/yungbote/docvault-backend/internal/modules/versioning"
	"github.com/yungbote/docvault-backend/internal/observability"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// ReindexMode selects where the new content comes from.
type ReindexMode string

const (
	// ModeUpload replaces the content with an uploaded revision and records snapshots.
	ModeUpload ReindexMode = "upload"
	// ModeRollback restores a stored snapshot. No snapshot is written.
	ModeRollback ReindexMode = "rollback"
	// ModeRefresh re-chunks the current content without touching the document row.
	ModeRefresh ReindexMode = "refresh"
)

type ReindexInput struct {
	DocumentID uuid.UUID
	Mode       ReindexMode

	// ModeUpload
	Content          string
	RequestedVersion string
	Bump             versioning.BumpKind
	ChangeSummary    string
	Upload           *versioning.UploadInfo
	CreatedBy        *uuid.UUID

	// ModeRollback
	VersionID uuid.UUID
}

// ReindexOutcome describes what one committed re-index changed.
type ReindexOutcome struct {
	DocumentID      uuid.UUID
	PreviousVersion string
	Version         string
	ChunkCount      int
	BaselineCreated bool
	SnapshotID      *uuid.UUID
}

type ReindexerDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner aggregates.TxRunner
	Hooks  aggregates.Hooks

	Documents repos.DocumentRepo
	Versions  repos.DocumentVersionRepo
	Chunks    repos.DocumentChunkRepo
	Adapter   *indexing.Adapter
}

// Reindexer replaces a document's content, chunks and version history as one
// transaction. The document row is locked first, so two re-indexes of the same
// document serialize.
type Reindexer struct {
	deps ReindexerDeps
	log  *logger.Logger
}

func NewReindexer(deps ReindexerDeps) *Reindexer {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Reindexer{deps: deps, log: log.With("service", "Reindexer")}
}

// Reindex runs the transaction and returns the number of chunks stored.
func (r *Reindexer) Reindex(ctx context.Context, in ReindexInput) (int, error) {
	out, err := r.Apply(ctx, in)
	if err != nil {
		return 0, err
	}
	return out.ChunkCount, nil
}

// Apply is Reindex with the full outcome.
func (r *Reindexer) Apply(ctx context.Context, in ReindexInput) (out *ReindexOutcome, err error) {
	const op = "documents.Reindex"
	ctx, span := observability.StartSpan(ctx, "documents.reindex",
		attribute.String("document.id", in.DocumentID.String()),
		attribute.String("reindex.mode", string(in.Mode)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if in.DocumentID == uuid.Nil {
		return nil, apperrors.Validation(op, "document id is required")
	}
	if r.deps.Adapter == nil || r.deps.Documents == nil || r.deps.Versions == nil || r.deps.Chunks == nil {
		return nil, apperrors.New(apperrors.CodeInternal, op, "reindexer is not fully configured", nil)
	}
	switch in.Mode {
	case ModeUpload:
		if strings.TrimSpace(in.ChangeSummary) == "" {
			return nil, apperrors.Validation(op, "change summary is required")
		}
		if err := versioning.ValidateOverride(in.RequestedVersion); err != nil {
			return nil, err
		}
	case ModeRollback:
		if in.VersionID == uuid.Nil {
			return nil, apperrors.Validation(op, "version id is required")
		}
	case ModeRefresh:
	default:
		return nil, apperrors.Validation(op, "unknown reindex mode %q", in.Mode)
	}

	var outcome ReindexOutcome
	err = aggregates.ExecuteWrite(ctx, aggregates.BaseDeps{
		DB:     r.deps.DB,
		Log:    r.log,
		Runner: r.deps.Runner,
		Hooks:  r.deps.Hooks,
	}, op, func(dbc dbctx.Context) error {
		res, txErr := r.run(dbc, in)
		if txErr != nil {
			return txErr
		}
		outcome = res
		return nil
	})
	if err != nil {
		r.log.Warn("reindex aborted", "document_id", in.DocumentID, "mode", in.Mode, "error", err)
		return nil, apperrors.Transaction(op, err)
	}

	span.SetAttributes(
		attribute.String("document.version", outcome.Version),
		attribute.Int("chunks.count", outcome.ChunkCount),
	)
	if in.Mode == ModeRollback {
		r.log.Info("rollback restored snapshot without recording a new version",
			"document_id", in.DocumentID, "version_id", in.VersionID, "version", outcome.Version)
	}
	r.log.Info("reindex committed",
		"document_id", in.DocumentID,
		"mode", in.Mode,
		"previous_version", outcome.PreviousVersion,
		"version", outcome.Version,
		"chunks", outcome.ChunkCount,
		"baseline_created", outcome.BaselineCreated,
	)
	return &outcome, nil
}

func (r *Reindexer) run(dbc dbctx.Context, in ReindexInput) (ReindexOutcome, error) {
	const op = "documents.Reindex"
	doc, err := r.deps.Documents.LockByID(dbc, in.DocumentID)
	if err != nil {
		return ReindexOutcome{}, err
	}
	if doc == nil {
		return ReindexOutcome{}, apperrors.NotFound(op, "document %s not found", in.DocumentID)
	}
	outcome := ReindexOutcome{
		DocumentID:      doc.ID,
		PreviousVersion: doc.CurrentVersion(),
	}

	var (
		content string
		meta    types.DocumentMetadata
		source  = strings.TrimSpace(doc.Source)
		plan    versioning.Plan
	)
	switch in.Mode {
	case ModeUpload:
		plan, err = versioning.PlanTransition(doc.Metadata, in.RequestedVersion, in.Bump, func(version string) (bool, error) {
			return r.deps.Versions.ExistsForVersion(dbc, doc.ID, version)
		})
		if err != nil {
			return ReindexOutcome{}, err
		}
		content = in.Content
		meta = versioning.MergeUploadMetadata(doc.Metadata, plan.Version, in.Upload)
		if source == "" && in.Upload != nil {
			source = strings.TrimSpace(in.Upload.Filename)
		}
		if source == "" {
			source = "uploaded"
		}
		outcome.PreviousVersion = plan.PreviousVersion
		outcome.Version = plan.Version
	case ModeRollback:
		snap, err := r.deps.Versions.GetByID(dbc, doc.ID, in.VersionID)
		if err != nil {
			return ReindexOutcome{}, err
		}
		if snap == nil {
			return ReindexOutcome{}, apperrors.NotFound(op, "version %s not found for document %s", in.VersionID, doc.ID)
		}
		content, meta = versioning.Rollback(snap)
		if source == "" {
			source = "rollback"
		}
		outcome.Version = snap.Version
	case ModeRefresh:
		content = doc.Content
		meta = doc.Metadata.Clone()
		outcome.Version = doc.CurrentVersion()
	}

	prepared, err := r.deps.Adapter.Prepare(dbc.Ctx, indexing.ChunkInput{
		Content:  content,
		Title:    doc.Title,
		Source:   source,
		Metadata: meta.Map(),
	})
	if err != nil {
		return ReindexOutcome{}, err
	}
	rows, err := indexing.Rows(doc.ID, prepared)
	if err != nil {
		return ReindexOutcome{}, err
	}

	if _, err := r.deps.Chunks.DeleteByDocumentID(dbc, doc.ID); err != nil {
		return ReindexOutcome{}, err
	}
	if len(rows) > 0 {
		if _, err := r.deps.Chunks.Create(dbc, rows); err != nil {
			return ReindexOutcome{}, err
		}
	}
	outcome.ChunkCount = len(rows)

	if in.Mode == ModeUpload {
		if plan.MustCreateBaseline {
			hasBaseline, err := r.deps.Versions.HasBaseline(dbc, doc.ID)
			if err != nil {
				return ReindexOutcome{}, err
			}
			baseline := versioning.BaselineSnapshot(doc, plan.PreviousVersion, !hasBaseline, in.CreatedBy)
			if _, err := r.deps.Versions.Create(dbc, baseline); err != nil {
				return ReindexOutcome{}, err
			}
			outcome.BaselineCreated = true
		}
		snap := versioning.UploadSnapshot(doc.ID, plan.Version, strings.TrimSpace(in.ChangeSummary), content, meta, in.Upload, in.CreatedBy)
		created, err := r.deps.Versions.Create(dbc, snap)
		if err != nil {
			return ReindexOutcome{}, err
		}
		id := created.ID
		outcome.SnapshotID = &id
	}

	if in.Mode != ModeRefresh {
		if err := r.deps.Documents.UpdateContent(dbc, doc.ID, content, meta); err != nil {
			return ReindexOutcome{}, err
		}
	}
	return outcome, nil
}
