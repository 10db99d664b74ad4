package recs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TargetModeAppend  = "append"
	TargetModeReplace = "replace"
)

// MediaRecommendation is a stored, ranked segment suggestion within a single
// media asset. Identity within a query hash is (query_hash, start, end).
type MediaRecommendation struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WorkspaceRef uuid.UUID      `gorm:"type:uuid;column:workspace_ref;not null;index" json:"workspace_ref"`
	MediaRef     uuid.UUID      `gorm:"type:uuid;column:media_ref;not null;index" json:"media_ref"`
	QueryHash    string         `gorm:"column:query_hash;not null;index;uniqueIndex:uq_media_recommendation_identity,where:deleted_at IS NULL" json:"query_hash"`
	Start        float64        `gorm:"column:start;not null;uniqueIndex:uq_media_recommendation_identity,where:deleted_at IS NULL" json:"start"`
	End          float64        `gorm:"column:end;not null;uniqueIndex:uq_media_recommendation_identity,where:deleted_at IS NULL" json:"end"`
	MediaClipRef *uuid.UUID     `gorm:"type:uuid;column:media_clip_ref" json:"media_clip_ref,omitempty"`
	Score        float64        `gorm:"column:score;not null" json:"score"`
	Rank         int            `gorm:"column:rank;not null;default:0;index" json:"rank"`
	Reason       string         `gorm:"column:reason" json:"reason"`
	ReasonData   datatypes.JSON `gorm:"column:reason_data;type:jsonb" json:"reason_data,omitempty"`
	Strategy     string         `gorm:"column:strategy;not null" json:"strategy"`
	Version      int            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MediaRecommendation) TableName() string { return "media_recommendation" }

// TimelineRecommendation is a stored clip suggestion for an editing timeline.
// Identity within a query hash is (query_hash, media_clip_ref). Once
// AcceptedAt is set the row is materialized: regeneration must never update,
// re-rank, or prune it.
type TimelineRecommendation struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WorkspaceRef    uuid.UUID      `gorm:"type:uuid;column:workspace_ref;not null;index" json:"workspace_ref"`
	TimelineRef     uuid.UUID      `gorm:"type:uuid;column:timeline_ref;not null;index" json:"timeline_ref"`
	QueryHash       string         `gorm:"column:query_hash;not null;index;uniqueIndex:uq_timeline_recommendation_identity,where:deleted_at IS NULL" json:"query_hash"`
	MediaClipRef    uuid.UUID      `gorm:"type:uuid;column:media_clip_ref;not null;index;uniqueIndex:uq_timeline_recommendation_identity,where:deleted_at IS NULL" json:"media_clip_ref"`
	TimelineClipRef *uuid.UUID     `gorm:"type:uuid;column:timeline_clip_ref" json:"timeline_clip_ref,omitempty"`
	TargetMode      string         `gorm:"column:target_mode;not null;default:append" json:"target_mode"`
	SeedClipRef     *uuid.UUID     `gorm:"type:uuid;column:seed_clip_ref" json:"seed_clip_ref,omitempty"`
	Score           float64        `gorm:"column:score;not null" json:"score"`
	Rank            int            `gorm:"column:rank;not null;default:0;index" json:"rank"`
	Reason          string         `gorm:"column:reason" json:"reason"`
	ReasonData      datatypes.JSON `gorm:"column:reason_data;type:jsonb" json:"reason_data,omitempty"`
	Strategy        string         `gorm:"column:strategy;not null" json:"strategy"`
	Version         int            `gorm:"column:version;not null;default:0" json:"version"`
	AcceptedAt      *time.Time     `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	DismissedAt     *time.Time     `gorm:"column:dismissed_at" json:"dismissed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TimelineRecommendation) TableName() string { return "timeline_recommendation" }
