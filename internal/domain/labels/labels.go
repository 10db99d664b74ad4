package labels

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LabelTypeObject = "object"
	LabelTypeShot   = "shot"
	LabelTypePerson = "person"
	LabelTypeSpeech = "speech"
)

func ValidLabelType(t string) bool {
	switch t {
	case LabelTypeObject, LabelTypeShot, LabelTypePerson, LabelTypeSpeech:
		return true
	}
	return false
}

// LabelEntity is a canonical named thing (a person, an object class) that one
// or more label clips reference.
type LabelEntity struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WorkspaceRef uuid.UUID      `gorm:"type:uuid;column:workspace_ref;not null;uniqueIndex:ux_label_entity_ws_name" json:"workspace_ref"`
	Name         string         `gorm:"column:name;not null;uniqueIndex:ux_label_entity_ws_name" json:"name"`
	Kind         string         `gorm:"column:kind" json:"kind,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LabelEntity) TableName() string { return "label_entity" }

// LabelClip is a detected, time-bounded label instance on a media asset.
// Rows are written once by the detection ingest and are read-only input to the
// recommendation engine.
type LabelClip struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MediaRef       uuid.UUID      `gorm:"type:uuid;column:media_ref;not null;index" json:"media_ref"`
	LabelType      string         `gorm:"column:label_type;not null;index" json:"label_type"`
	LabelEntityRef *uuid.UUID     `gorm:"type:uuid;column:label_entity_ref;index" json:"label_entity_ref,omitempty"`
	Start          float64        `gorm:"column:start;not null" json:"start"`
	End            float64        `gorm:"column:end;not null" json:"end"`
	Confidence     float64        `gorm:"column:confidence;not null" json:"confidence"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LabelClip) TableName() string { return "label_clip" }
