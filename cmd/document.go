package main

import (
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/docvault-backend/internal/app"
	"github.com/yungbote/docvault-backend/internal/modules/documents"
	"github.com/yungbote/docvault-backend/internal/modules/versioning"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

var createOpts struct {
	title, source, content, file, lang, version string
}

var uploadOpts struct {
	file, filename, mime, summary, bump, version, lang, createdBy string
}

var diffOpts struct {
	left, right string
	raw         bool
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Ingest a new document from a file or inline content",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

var uploadCmd = &cobra.Command{
	Use:   "upload [doc-id]",
	Short: "Upload a new version of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback [doc-id] [version-id]",
	Short: "Restore a stored version",
	Long:  `Restores the content and metadata of a stored version. No new version is recorded.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runRollback,
}

var versionsCmd = &cobra.Command{
	Use:   "versions [doc-id]",
	Short: "List the versions of a document, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

var versionCmd = &cobra.Command{
	Use:   "version [doc-id] [version-id]",
	Short: "Show one stored version",
	Args:  cobra.ExactArgs(2),
	RunE:  runVersion,
}

var diffCmd = &cobra.Command{
	Use:   "diff [doc-id]",
	Short: "Unified diff between two versions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "List the stored chunks of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Re-chunk and re-embed the current content",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindex,
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createOpts.title, "title", "", "document title")
	f.StringVar(&createOpts.source, "source", "", "document source")
	f.StringVar(&createOpts.content, "content", "", "inline content")
	f.StringVar(&createOpts.file, "file", "", "file to ingest")
	f.StringVar(&createOpts.lang, "lang", "", "OCR language hint")
	f.StringVar(&createOpts.version, "version", "", "initial version (default 1.0)")

	f = uploadCmd.Flags()
	f.StringVar(&uploadOpts.file, "file", "", "file holding the new content")
	f.StringVar(&uploadOpts.filename, "filename", "", "recorded filename (defaults to the file's base name)")
	f.StringVar(&uploadOpts.mime, "mime", "", "recorded mime type (detected when empty)")
	f.StringVarP(&uploadOpts.summary, "summary", "m", "", "change summary")
	f.StringVar(&uploadOpts.bump, "bump", "minor", "version bump: minor|major")
	f.StringVar(&uploadOpts.version, "version", "", "explicit version, e.g. 2.0 or v3")
	f.StringVar(&uploadOpts.lang, "lang", "", "OCR language hint")
	f.StringVar(&uploadOpts.createdBy, "created-by", "", "uploader user id")

	f = diffCmd.Flags()
	f.StringVar(&diffOpts.left, "left", versioning.SelectorCurrent, "left side: current or a version id")
	f.StringVar(&diffOpts.right, "right", "", "right side: current or a version id")
	f.BoolVar(&diffOpts.raw, "raw", false, "print the unified diff only, colored on a terminal")

	rootCmd.AddCommand(createCmd, uploadCmd, rollbackCmd, versionsCmd, versionCmd, diffCmd, chunksCmd, reindexCmd)
}

// withDocuments opens the application for one command and closes it afterwards.
func withDocuments(cmd *cobra.Command, fn func(uc documents.Usecases) (any, error)) error {
	application, err := app.New(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Close()
	out, err := fn(application.Documents)
	if err != nil || out == nil {
		return err
	}
	return render(cmd.OutOrStdout(), outputFormat, out)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		out, err := uc.CreateDocument(cmd.Context(), documents.NewDocumentInput{
			Title:        createOpts.title,
			Source:       createOpts.source,
			Content:      createOpts.content,
			FilePath:     createOpts.file,
			LanguageHint: createOpts.lang,
			Version:      createOpts.version,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"document_id": out.Document.ID,
			"version":     out.Document.CurrentVersion(),
			"chunks":      out.ChunkCount,
			"extraction":  out.Extraction,
		}, nil
	})
}

func runUpload(cmd *cobra.Command, args []string) error {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return err
	}
	in := documents.UploadVersionInput{
		DocumentID:    id,
		FilePath:      uploadOpts.file,
		Filename:      uploadOpts.filename,
		Mime:          uploadOpts.mime,
		ChangeSummary: uploadOpts.summary,
		Bump:          versioning.ParseBumpKind(uploadOpts.bump),
		Version:       uploadOpts.version,
		LanguageHint:  uploadOpts.lang,
	}
	if strings.TrimSpace(uploadOpts.createdBy) != "" {
		uid, err := parseID("created-by", uploadOpts.createdBy)
		if err != nil {
			return err
		}
		in.CreatedBy = &uid
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		out, err := uc.UploadVersion(cmd.Context(), in)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"document_id":      out.DocumentID,
			"previous_version": out.PreviousVersion,
			"version":          out.Version,
			"chunks":           out.ChunkCount,
			"baseline_created": out.BaselineCreated,
			"version_id":       out.SnapshotID,
		}, nil
	})
}

func runRollback(cmd *cobra.Command, args []string) error {
	id, vid, err := parseIDPair(args)
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		out, err := uc.RollbackToVersion(cmd.Context(), id, vid)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"document_id": out.DocumentID,
			"version":     out.Version,
			"chunks":      out.ChunkCount,
		}, nil
	})
}

func runVersions(cmd *cobra.Command, args []string) error {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		return uc.ListVersions(cmd.Context(), id)
	})
}

func runVersion(cmd *cobra.Command, args []string) error {
	id, vid, err := parseIDPair(args)
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		return uc.GetVersion(cmd.Context(), id, vid)
	})
}

func runDiff(cmd *cobra.Command, args []string) error {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		out, err := uc.CompareVersions(cmd.Context(), documents.CompareInput{
			DocumentID: id,
			Left:       diffOpts.left,
			Right:      diffOpts.right,
		})
		if err != nil {
			return nil, err
		}
		if diffOpts.raw {
			return nil, writeDiff(cmd.OutOrStdout(), out.Diff)
		}
		return out, nil
	})
}

func runChunks(cmd *cobra.Command, args []string) error {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		out, err := uc.GetDocumentChunks(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		return chunkViews(out), nil
	})
}

func runReindex(cmd *cobra.Command, args []string) error {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return err
	}
	return withDocuments(cmd, func(uc documents.Usecases) (any, error) {
		n, err := uc.ReindexCurrent(cmd.Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"document_id": id, "chunks": n}, nil
	})
}

func parseID(name, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, apperrors.Validation("cli", "%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("cli", "%s: invalid id %q", name, raw)
	}
	return id, nil
}

func parseIDPair(args []string) (uuid.UUID, uuid.UUID, error) {
	id, err := parseID("doc-id", args[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	vid, err := parseID("version-id", args[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return id, vid, nil
}
