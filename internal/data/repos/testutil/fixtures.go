package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, title, content, version string) *types.Document {
	tb.Helper()
	d := &types.Document{
		Title:    title,
		Source:   "test",
		Content:  content,
		Metadata: types.DocumentMetadata{Version: version},
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

func SeedVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, doc *types.Document, version, summary string, baseline bool) *types.DocumentVersion {
	tb.Helper()
	meta := doc.Metadata.Clone()
	meta.Version = version
	v := &types.DocumentVersion{
		DocumentID:    doc.ID,
		Version:       version,
		ChangeSummary: summary,
		Content:       doc.Content,
		Metadata:      meta,
		IsBaseline:    baseline,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed version: %v", err)
	}
	return v
}
