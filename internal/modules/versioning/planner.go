package versioning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/docvault-backend/internal/domain"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

var overrideRE = regexp.MustCompile(`^[vV]?\d+(\.\d+)*$`)

// ValidateOverride rejects explicit versions that are not dotted numbers.
func ValidateOverride(version string) error {
	v := strings.TrimSpace(version)
	if v == "" {
		return nil
	}
	if !overrideRE.MatchString(v) {
		return apperrors.Validation("versioning.ValidateOverride", "invalid version %q: expected digits separated by dots, optionally prefixed with v", v)
	}
	// every segment must survive ParseVersion, or the next bump restarts from 1
	for _, seg := range strings.Split(stripPrefix(v), ".") {
		if _, ok := parseSegment(seg); !ok {
			return apperrors.Validation("versioning.ValidateOverride", "invalid version %q: segment %q is out of range", v, seg)
		}
	}
	return nil
}

// Plan is the version transition for one upload.
type Plan struct {
	// PreviousVersion is the version string of the content being replaced.
	PreviousVersion string
	// Version is the version string the new content gets.
	Version string
	// MustCreateBaseline is set when no snapshot exists for PreviousVersion.
	MustCreateBaseline bool
}

// PlanTransition decides the next version and whether the pre-update content needs a
// snapshot first. hasSnapshot must run inside the same locked transaction as the
// inserts that follow.
func PlanTransition(current types.DocumentMetadata, requested string, bump BumpKind, hasSnapshot func(version string) (bool, error)) (Plan, error) {
	if err := ValidateOverride(requested); err != nil {
		return Plan{}, err
	}
	prev := current.VersionString()
	if prev == "" {
		prev = types.DefaultVersion
	}
	plan := Plan{
		PreviousVersion: prev,
		Version:         Next(prev, bump, requested),
	}
	if hasSnapshot == nil {
		return plan, nil
	}
	exists, err := hasSnapshot(prev)
	if err != nil {
		return Plan{}, fmt.Errorf("check snapshot for %s: %w", prev, err)
	}
	plan.MustCreateBaseline = !exists
	return plan, nil
}

// UploadInfo is the provenance of an uploaded file.
type UploadInfo struct {
	Filename string
	Mime     string
	Size     int64
}

// MergeUploadMetadata returns a copy of prev with the new version and, when a file
// was uploaded, its provenance.
func MergeUploadMetadata(prev types.DocumentMetadata, version string, upload *UploadInfo) types.DocumentMetadata {
	next := prev.Clone()
	next.Version = version
	if upload == nil || strings.TrimSpace(upload.Filename) == "" {
		return next
	}
	next.LastUploadFilename = upload.Filename
	next.LastUploadMime = upload.Mime
	next.FilePath = upload.Filename
	size := upload.Size
	next.FileSize = &size
	return next
}

// BaselineSnapshot captures the pre-update content of doc under version. File fields
// come from the previous upload provenance, if any.
func BaselineSnapshot(doc *types.Document, version string, isBaseline bool, createdBy *uuid.UUID) *types.DocumentVersion {
	meta := doc.Metadata.Clone()
	snap := &types.DocumentVersion{
		DocumentID:    doc.ID,
		Version:       version,
		ChangeSummary: types.BaselineChangeSummary,
		Content:       doc.Content,
		Metadata:      meta,
		FileSize:      meta.FileSize,
		CreatedBy:     createdBy,
		IsBaseline:    isBaseline,
	}
	if meta.FilePath != "" {
		fp := meta.FilePath
		snap.FilePath = &fp
	}
	if meta.LastUploadMime != "" {
		m := meta.LastUploadMime
		snap.FileMime = &m
	}
	return snap
}

// UploadSnapshot records the new content produced by an upload.
func UploadSnapshot(docID uuid.UUID, version, summary, content string, meta types.DocumentMetadata, upload *UploadInfo, createdBy *uuid.UUID) *types.DocumentVersion {
	snap := &types.DocumentVersion{
		DocumentID:    docID,
		Version:       version,
		ChangeSummary: summary,
		Content:       content,
		Metadata:      meta.Clone(),
		CreatedBy:     createdBy,
	}
	if upload != nil {
		if upload.Filename != "" {
			fn := upload.Filename
			snap.FilePath = &fn
		}
		if upload.Mime != "" {
			m := upload.Mime
			snap.FileMime = &m
		}
		size := upload.Size
		snap.FileSize = &size
	}
	return snap
}

// Rollback returns the exact content and metadata stored in snapshot.
func Rollback(snapshot *types.DocumentVersion) (string, types.DocumentMetadata) {
	if snapshot == nil {
		return "", types.DocumentMetadata{}
	}
	return snapshot.Content, snapshot.Metadata.Clone()
}
