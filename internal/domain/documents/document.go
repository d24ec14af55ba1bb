package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID       uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string           `gorm:"column:title;not null" json:"title"`
	Source   string           `gorm:"column:source" json:"source"`
	Content  string           `gorm:"column:content;type:text" json:"content"`
	Metadata DocumentMetadata `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "document" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// CurrentVersion is the version string on the row, "1.0" when absent.
func (d *Document) CurrentVersion() string {
	if d == nil {
		return DefaultVersion
	}
	if v := d.Metadata.VersionString(); v != "" {
		return v
	}
	return DefaultVersion
}

const DefaultVersion = "1.0"
