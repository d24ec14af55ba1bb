package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/modules/extraction"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	"github.com/yungbote/docvault-backend/internal/modules/versioning"
	"github.com/yungbote/docvault-backend/internal/observability"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

const metaExtraction = "extraction"

type NewDocumentInput struct {
	Title  string
	Source string
	// Content is used as-is when FilePath is empty.
	Content      string
	FilePath     string
	LanguageHint string
	// Version defaults to "1.0".
	Version  string
	Metadata map[string]any
}

type CreateDocumentOutput struct {
	Document   *types.Document
	ChunkCount int
	Extraction *extraction.Result
}

type UploadVersionInput struct {
	DocumentID uuid.UUID
	FilePath   string
	// Filename is the name recorded as upload provenance; defaults to the base of FilePath.
	Filename string
	// Mime is detected from the file when empty.
	Mime          string
	ChangeSummary string
	Bump          versioning.BumpKind
	Version       string
	LanguageHint  string
	CreatedBy     *uuid.UUID
}

type UploadVersionOutput struct {
	DocumentID      uuid.UUID
	PreviousVersion string
	Version         string
	ChunkCount      int
	BaselineCreated bool
	SnapshotID      *uuid.UUID
	Extraction      *extraction.Result
}

type RollbackOutput struct {
	DocumentID uuid.UUID
	VersionID  uuid.UUID
	Version    string
	ChunkCount int
}

type loadedFile struct {
	Text       string
	Upload     versioning.UploadInfo
	Extraction *extraction.Result
}

// IsSupported reports whether path goes through OCR/PDF extraction rather than being
// read as plain text.
func (u Usecases) IsSupported(path string) bool {
	return extraction.IsSupported(path)
}

func (u Usecases) CreateDocument(ctx context.Context, in NewDocumentInput) (out CreateDocumentOutput, err error) {
	const op = "documents.CreateDocument"
	ctx, span := observability.StartSpan(ctx, op)
	defer func() { observability.EndSpan(span, err) }()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return out, apperrors.Validation(op, "title is required")
	}
	if strings.TrimSpace(in.FilePath) == "" && strings.TrimSpace(in.Content) == "" {
		return out, apperrors.Validation(op, "either content or a file is required")
	}
	if err := versioning.ValidateOverride(in.Version); err != nil {
		return out, err
	}
	if u.deps.Adapter == nil || u.deps.Documents == nil || u.deps.Chunks == nil {
		return out, apperrors.New(apperrors.CodeInternal, op, "document usecases are not fully configured", nil)
	}

	meta, err := metadataFromMap(in.Metadata)
	if err != nil {
		return out, apperrors.Validation(op, "invalid metadata: %v", err)
	}
	version := strings.TrimSpace(in.Version)
	if version == "" {
		version = types.DefaultVersion
	}

	content := in.Content
	source := strings.TrimSpace(in.Source)
	if strings.TrimSpace(in.FilePath) != "" {
		f, err := u.loadFile(ctx, in.FilePath, "", "", in.LanguageHint)
		if err != nil {
			return out, err
		}
		content = f.Text
		meta = versioning.MergeUploadMetadata(meta, version, &f.Upload)
		if f.Extraction != nil {
			if meta.Extra == nil {
				meta.Extra = map[string]any{}
			}
			meta.Extra[metaExtraction] = f.Extraction.Metadata()
		}
		out.Extraction = f.Extraction
		if source == "" {
			source = f.Upload.Filename
		}
	} else {
		meta.Version = version
	}

	prepared, err := u.deps.Adapter.Prepare(ctx, indexing.ChunkInput{
		Content:  content,
		Title:    title,
		Source:   source,
		Metadata: meta.Map(),
	})
	if err != nil {
		return out, apperrors.Transaction(op, err)
	}

	doc := &types.Document{
		Title:    title,
		Source:   source,
		Content:  content,
		Metadata: meta,
	}
	err = aggregates.ExecuteWrite(ctx, u.baseDeps(), op, func(dbc dbctx.Context) error {
		created, err := u.deps.Documents.Create(dbc, doc)
		if err != nil {
			return err
		}
		rows, err := indexing.Rows(created.ID, prepared)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err = u.deps.Chunks.Create(dbc, rows)
		return err
	})
	if err != nil {
		return CreateDocumentOutput{}, apperrors.Transaction(op, err)
	}

	span.SetAttributes(attribute.String("document.id", doc.ID.String()), attribute.Int("chunks.count", len(prepared)))
	u.deps.Log.Info("document created",
		"document_id", doc.ID,
		"title", title,
		"version", version,
		"chunks", len(prepared),
	)
	out.Document = doc
	out.ChunkCount = len(prepared)
	return out, nil
}

// UploadVersion replaces a document's content with a new revision and records it as a
// version snapshot.
func (u Usecases) UploadVersion(ctx context.Context, in UploadVersionInput) (out UploadVersionOutput, err error) {
	const op = "documents.UploadVersion"
	ctx, span := observability.StartSpan(ctx, op, attribute.String("document.id", in.DocumentID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if in.DocumentID == uuid.Nil {
		return out, apperrors.Validation(op, "document id is required")
	}
	if strings.TrimSpace(in.ChangeSummary) == "" {
		return out, apperrors.Validation(op, "change summary is required")
	}
	if strings.TrimSpace(in.FilePath) == "" {
		return out, apperrors.Validation(op, "file is required")
	}
	if err := versioning.ValidateOverride(in.Version); err != nil {
		return out, err
	}

	f, err := u.loadFile(ctx, in.FilePath, in.Filename, in.Mime, in.LanguageHint)
	if err != nil {
		return out, err
	}
	res, err := u.reindexer.Apply(ctx, ReindexInput{
		DocumentID:       in.DocumentID,
		Mode:             ModeUpload,
		Content:          f.Text,
		RequestedVersion: strings.TrimSpace(in.Version),
		Bump:             in.Bump,
		ChangeSummary:    in.ChangeSummary,
		Upload:           &f.Upload,
		CreatedBy:        in.CreatedBy,
	})
	if err != nil {
		return out, err
	}
	return UploadVersionOutput{
		DocumentID:      res.DocumentID,
		PreviousVersion: res.PreviousVersion,
		Version:         res.Version,
		ChunkCount:      res.ChunkCount,
		BaselineCreated: res.BaselineCreated,
		SnapshotID:      res.SnapshotID,
		Extraction:      f.Extraction,
	}, nil
}

// RollbackToVersion restores the content and metadata of a stored snapshot. History is
// left as is: no snapshot is recorded for the rollback itself.
func (u Usecases) RollbackToVersion(ctx context.Context, docID, versionID uuid.UUID) (out RollbackOutput, err error) {
	const op = "documents.RollbackToVersion"
	ctx, span := observability.StartSpan(ctx, op,
		attribute.String("document.id", docID.String()),
		attribute.String("version.id", versionID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	res, err := u.reindexer.Apply(ctx, ReindexInput{
		DocumentID: docID,
		Mode:       ModeRollback,
		VersionID:  versionID,
	})
	if err != nil {
		return out, err
	}
	return RollbackOutput{
		DocumentID: docID,
		VersionID:  versionID,
		Version:    res.Version,
		ChunkCount: res.ChunkCount,
	}, nil
}

// ReindexCurrent re-chunks and re-embeds the stored content. Version and history are
// unchanged.
func (u Usecases) ReindexCurrent(ctx context.Context, docID uuid.UUID) (int, error) {
	return u.reindexer.Reindex(ctx, ReindexInput{DocumentID: docID, Mode: ModeRefresh})
}

func (u Usecases) loadFile(ctx context.Context, path, filename, mimeHint, languageHint string) (loadedFile, error) {
	const op = "documents.loadFile"
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return loadedFile{}, apperrors.NotFound(op, "file not found: %s", filepath.Base(path))
		}
		return loadedFile{}, apperrors.New(apperrors.CodeInternal, op, "stat upload", err)
	}
	if info.IsDir() {
		return loadedFile{}, apperrors.Validation(op, "%s is a directory", filepath.Base(path))
	}
	if strings.TrimSpace(filename) == "" {
		filename = filepath.Base(path)
	}
	mt := strings.TrimSpace(mimeHint)
	if mt == "" {
		mt = detectMime(path)
	}
	out := loadedFile{
		Upload: versioning.UploadInfo{Filename: filename, Mime: mt, Size: info.Size()},
	}

	if extraction.IsSupported(path) {
		if u.deps.Extractor == nil {
			return loadedFile{}, apperrors.Extraction(op, "no extraction engine configured for "+strings.ToLower(filepath.Ext(path))+" files", nil)
		}
		res, err := u.deps.Extractor.Extract(ctx, path, languageHint)
		if err != nil {
			return loadedFile{}, err
		}
		out.Text = res.Text
		out.Extraction = res
		return out, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return loadedFile{}, apperrors.New(apperrors.CodeInternal, op, "read upload", err)
	}
	out.Text = extraction.DecodeText(raw)
	u.deps.Log.Debug("plain text upload decoded", "filename", filename, "bytes", len(raw))
	return out, nil
}

func detectMime(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil || mt == nil {
		return "application/octet-stream"
	}
	base, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(base)
}

// metadataFromMap lifts caller-supplied attributes into typed metadata.
func metadataFromMap(m map[string]any) (types.DocumentMetadata, error) {
	var meta types.DocumentMetadata
	if len(m) == 0 {
		return meta, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return meta, fmt.Errorf("encode: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}
