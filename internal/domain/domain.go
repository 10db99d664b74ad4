package domain

import (
	"github.com/clipsmith/clipsmith-backend/internal/domain/jobs"
	"github.com/clipsmith/clipsmith-backend/internal/domain/labels"
	"github.com/clipsmith/clipsmith-backend/internal/domain/media"
	"github.com/clipsmith/clipsmith-backend/internal/domain/recs"
)

// Aliases so callers can import one package as `types`.

type (
	Workspace    = media.Workspace
	MediaAsset   = media.MediaAsset
	Timeline     = media.Timeline
	MediaClip    = media.MediaClip
	TimelineClip = media.TimelineClip

	LabelClip   = labels.LabelClip
	LabelEntity = labels.LabelEntity

	MediaRecommendation    = recs.MediaRecommendation
	TimelineRecommendation = recs.TimelineRecommendation

	JobRun = jobs.JobRun
)

const (
	LabelTypeObject = labels.LabelTypeObject
	LabelTypeShot   = labels.LabelTypeShot
	LabelTypePerson = labels.LabelTypePerson
	LabelTypeSpeech = labels.LabelTypeSpeech

	TargetModeAppend  = recs.TargetModeAppend
	TargetModeReplace = recs.TargetModeReplace

	JobStatusQueued    = jobs.JobStatusQueued
	JobStatusRunning   = jobs.JobStatusRunning
	JobStatusSucceeded = jobs.JobStatusSucceeded
	JobStatusFailed    = jobs.JobStatusFailed
	JobStatusCanceled  = jobs.JobStatusCanceled
)

var ValidLabelType = labels.ValidLabelType
