package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/modules/versioning"
	"github.com/yungbote/docvault-backend/internal/observability"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

// VersionEntry is one row of a version listing. The live document shows up as a
// synthetic entry with IsCurrent set and no VersionID.
type VersionEntry struct {
	VersionID     *uuid.UUID `json:"version_id" yaml:"version_id"`
	Version       string     `json:"version" yaml:"version"`
	ChangeSummary string     `json:"change_summary" yaml:"change_summary"`
	FilePath      *string    `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	FileMime      *string    `json:"file_mime,omitempty" yaml:"file_mime,omitempty"`
	FileSize      *int64     `json:"file_size,omitempty" yaml:"file_size,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at" yaml:"created_at"`
	IsBaseline    bool       `json:"is_baseline" yaml:"is_baseline"`
	IsCurrent     bool       `json:"is_current" yaml:"is_current"`
}

type CompareInput struct {
	DocumentID uuid.UUID
	// Left defaults to "current".
	Left  string
	Right string
}

type CompareOutput struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
	Diff  string `json:"diff" yaml:"diff"`
}

func (u Usecases) GetDocument(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	const op = "documents.GetDocument"
	doc, err := u.deps.Documents.GetByID(dbctx.Context{Ctx: ctx}, docID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, op, "load document", err)
	}
	if doc == nil {
		return nil, apperrors.NotFound(op, "document %s not found", docID)
	}
	return doc, nil
}

func (u Usecases) ListDocumentIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := u.deps.Documents.ListIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, "documents.ListDocumentIDs", "list documents", err)
	}
	return ids, nil
}

// ListVersions returns the snapshots newest first, preceded by the current document
// when it carries a version.
func (u Usecases) ListVersions(ctx context.Context, docID uuid.UUID) (out []VersionEntry, err error) {
	const op = "documents.ListVersions"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("document.id", docID.String()))
	defer func() { observability.EndSpan(span, err) }()

	doc, err := u.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	rows, err := u.deps.Versions.ListByDocument(dbctx.Context{Ctx: ctx}, docID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, op, "list versions", err)
	}

	out = make([]VersionEntry, 0, len(rows)+1)
	if v := doc.Metadata.VersionString(); v != "" {
		current := VersionEntry{
			Version:       v,
			ChangeSummary: "Current version",
			CreatedAt:     doc.UpdatedAt,
			IsCurrent:     true,
		}
		if doc.Metadata.FilePath != "" {
			fp := doc.Metadata.FilePath
			current.FilePath = &fp
		}
		if doc.Metadata.LastUploadMime != "" {
			m := doc.Metadata.LastUploadMime
			current.FileMime = &m
		}
		current.FileSize = doc.Metadata.FileSize
		out = append(out, current)
	}
	for _, r := range rows {
		id := r.ID
		out = append(out, VersionEntry{
			VersionID:     &id,
			Version:       r.Version,
			ChangeSummary: r.ChangeSummary,
			FilePath:      r.FilePath,
			FileMime:      r.FileMime,
			FileSize:      r.FileSize,
			CreatedBy:     r.CreatedBy,
			CreatedAt:     r.CreatedAt,
			IsBaseline:    r.IsBaseline,
		})
	}
	return out, nil
}

func (u Usecases) GetVersion(ctx context.Context, docID, versionID uuid.UUID) (*types.DocumentVersion, error) {
	const op = "documents.GetVersion"
	v, err := u.deps.Versions.GetByID(dbctx.Context{Ctx: ctx}, docID, versionID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, op, "load version", err)
	}
	if v == nil {
		return nil, apperrors.NotFound(op, "version %s not found for document %s", versionID, docID)
	}
	return v, nil
}

// CompareVersions diffs two selectors ("current" or a snapshot id) of one document.
func (u Usecases) CompareVersions(ctx context.Context, in CompareInput) (out CompareOutput, err error) {
	const op = "documents.CompareVersions"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("document.id", in.DocumentID.String()))
	defer func() { observability.EndSpan(span, err) }()

	left := strings.TrimSpace(in.Left)
	if left == "" {
		left = versioning.SelectorCurrent
	}
	right := strings.TrimSpace(in.Right)
	if right == "" {
		return out, apperrors.Validation(op, "right version is required")
	}

	leftContent, err := u.contentFor(ctx, in.DocumentID, left)
	if err != nil {
		return out, err
	}
	rightContent, err := u.contentFor(ctx, in.DocumentID, right)
	if err != nil {
		return out, err
	}
	diff, err := versioning.Diff(leftContent, rightContent, left, right)
	if err != nil {
		return out, apperrors.New(apperrors.CodeInternal, op, "render diff", err)
	}
	return CompareOutput{Left: left, Right: right, Diff: diff}, nil
}

func (u Usecases) contentFor(ctx context.Context, docID uuid.UUID, raw string) (string, error) {
	sel, err := versioning.ParseSelector(raw)
	if err != nil {
		return "", err
	}
	if sel.Current {
		doc, err := u.GetDocument(ctx, docID)
		if err != nil {
			return "", err
		}
		return doc.Content, nil
	}
	v, err := u.GetVersion(ctx, docID, sel.VersionID)
	if err != nil {
		return "", err
	}
	return v.Content, nil
}

// GetDocumentChunks lists the stored chunks in index order.
func (u Usecases) GetDocumentChunks(ctx context.Context, docID uuid.UUID) ([]*types.DocumentChunk, error) {
	const op = "documents.GetDocumentChunks"
	if _, err := u.GetDocument(ctx, docID); err != nil {
		return nil, err
	}
	chunks, err := u.deps.Chunks.ListByDocumentID(dbctx.Context{Ctx: ctx}, docID)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeInternal, op, "list chunks", err)
	}
	return chunks, nil
}
