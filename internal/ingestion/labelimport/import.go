package labelimport

import (
	"fmt"

	videointelligencepb "cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/google/uuid"

	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type Stats struct {
	Clips        int `json:"clips"`
	Entities     int `json:"entities"`
	LabelVersion int `json:"label_version"`
}

// Importer replaces a media asset's label rows with a fresh detection result
// and bumps the asset's label version. The engine never calls this; labels are
// read-only input to scoring.
type Importer struct {
	log        *logger.Logger
	media      mediarepos.MediaAssetRepo
	labelClips labelrepos.LabelClipRepo
	entities   labelrepos.LabelEntityRepo
}

func NewImporter(baseLog *logger.Logger, media mediarepos.MediaAssetRepo, labelClips labelrepos.LabelClipRepo, entities labelrepos.LabelEntityRepo) *Importer {
	return &Importer{
		log:        baseLog.With("component", "LabelImporter"),
		media:      media,
		labelClips: labelClips,
		entities:   entities,
	}
}

// Import is replace-not-merge: existing label clips for the asset are deleted
// before the new set is written, and the version bump happens last so a
// half-imported asset never looks fresh.
func (i *Importer) Import(dbc dbctx.Context, workspaceID, mediaID uuid.UUID, results *videointelligencepb.VideoAnnotationResults) (Stats, error) {
	stats := Stats{}
	if workspaceID == uuid.Nil || mediaID == uuid.Nil {
		return stats, fmt.Errorf("labelimport: missing workspace or media id")
	}

	pending := convert(results)

	if err := i.labelClips.DeleteByMedia(dbc, mediaID); err != nil {
		return stats, fmt.Errorf("delete existing labels: %w", err)
	}

	entityIDs := make(map[string]uuid.UUID)
	clips := make([]*types.LabelClip, 0, len(pending))
	for _, p := range pending {
		clip := p.Clip
		clip.MediaRef = mediaID
		if p.EntityName != "" {
			id, ok := entityIDs[p.EntityName]
			if !ok {
				entity, err := i.entities.Upsert(dbc, workspaceID, p.EntityName, p.EntityKind)
				if err != nil {
					return stats, fmt.Errorf("upsert entity %q: %w", p.EntityName, err)
				}
				id = entity.ID
				entityIDs[p.EntityName] = id
			}
			ref := id
			clip.LabelEntityRef = &ref
		}
		clips = append(clips, &clip)
	}

	if len(clips) > 0 {
		if _, err := i.labelClips.Create(dbc, clips); err != nil {
			return stats, fmt.Errorf("create label clips: %w", err)
		}
	}

	version, err := i.media.BumpLabelVersion(dbc, mediaID)
	if err != nil {
		return stats, fmt.Errorf("bump label version: %w", err)
	}

	stats.Clips = len(clips)
	stats.Entities = len(entityIDs)
	stats.LabelVersion = version
	i.log.Info("Imported detection labels",
		"media_id", mediaID,
		"clips", stats.Clips,
		"entities", stats.Entities,
		"label_version", version,
	)
	return stats, nil
}
