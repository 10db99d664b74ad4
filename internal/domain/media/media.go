package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Workspace struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Workspace) TableName() string { return "workspace" }

// MediaAsset is one source video. LabelVersion is bumped every time the label
// ingestion boundary writes new detection output for the asset, which
// invalidates previously computed query hashes.
type MediaAsset struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WorkspaceRef uuid.UUID      `gorm:"type:uuid;column:workspace_ref;not null;index" json:"workspace_ref"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	SourceURI    string         `gorm:"column:source_uri" json:"source_uri,omitempty"`
	Duration     float64        `gorm:"column:duration;not null;default:0" json:"duration"`
	LabelVersion int            `gorm:"column:label_version;not null;default:0" json:"label_version"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MediaAsset) TableName() string { return "media_asset" }

// Timeline is an edit sequence over a single source asset; clip placements are
// expressed in source-asset seconds.
type Timeline struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WorkspaceRef uuid.UUID      `gorm:"type:uuid;column:workspace_ref;not null;index" json:"workspace_ref"`
	MediaRef     uuid.UUID      `gorm:"type:uuid;column:media_ref;not null;index" json:"media_ref"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Duration     float64        `gorm:"column:duration;not null;default:0" json:"duration"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Timeline) TableName() string { return "timeline" }

type MediaClip struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MediaRef  uuid.UUID      `gorm:"type:uuid;column:media_ref;not null;index" json:"media_ref"`
	Start     float64        `gorm:"column:start;not null" json:"start"`
	End       float64        `gorm:"column:end;not null" json:"end"`
	ClipType  string         `gorm:"column:clip_type" json:"clip_type,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MediaClip) TableName() string { return "media_clip" }

// TimelineClip occupies the half-open range [Start, End) on its timeline.
type TimelineClip struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TimelineRef  uuid.UUID      `gorm:"type:uuid;column:timeline_ref;not null;index" json:"timeline_ref"`
	MediaClipRef uuid.UUID      `gorm:"type:uuid;column:media_clip_ref;not null;index" json:"media_clip_ref"`
	Start        float64        `gorm:"column:start;not null" json:"start"`
	End          float64        `gorm:"column:end;not null" json:"end"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TimelineClip) TableName() string { return "timeline_clip" }
