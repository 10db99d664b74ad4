package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

type LoadMediaContextDeps struct {
	DB         *gorm.DB
	Log        *logger.Logger
	Workspaces mediarepos.WorkspaceRepo
	Media      mediarepos.MediaAssetRepo
	MediaClips mediarepos.MediaClipRepo
	LabelClips labelrepos.LabelClipRepo
	Entities   labelrepos.LabelEntityRepo
}

type LoadMediaContextInput struct {
	WorkspaceID uuid.UUID
	MediaID     uuid.UUID
	Params      GenerateParams
}

type LoadMediaContextOutput struct {
	Ctx     *strategy.Context
	Version int
}

// LoadMediaContext assembles the immutable snapshot a media-level generation
// run scores against. Everything strategies may read is fetched here; after
// this step the run performs no further reads.
func LoadMediaContext(ctx context.Context, deps LoadMediaContextDeps, in LoadMediaContextInput) (LoadMediaContextOutput, error) {
	out := LoadMediaContextOutput{}
	if deps.DB == nil || deps.Log == nil || deps.Workspaces == nil || deps.Media == nil || deps.MediaClips == nil || deps.LabelClips == nil || deps.Entities == nil {
		return out, fmt.Errorf("load_media_context: missing deps")
	}
	if in.WorkspaceID == uuid.Nil {
		return out, fmt.Errorf("load_media_context: missing workspace_id")
	}
	if in.MediaID == uuid.Nil {
		return out, fmt.Errorf("load_media_context: missing media_id")
	}
	dbc := dbctx.Context{Ctx: ctx}

	ws, err := deps.Workspaces.GetByID(dbc, in.WorkspaceID)
	if err != nil {
		return out, fmt.Errorf("load workspace: %w", err)
	}
	if ws == nil {
		return out, fmt.Errorf("workspace %s not found", in.WorkspaceID)
	}
	asset, err := deps.Media.GetByID(dbc, in.MediaID)
	if err != nil {
		return out, fmt.Errorf("load media asset: %w", err)
	}
	if asset == nil {
		return out, fmt.Errorf("media asset %s not found", in.MediaID)
	}
	if asset.WorkspaceRef != ws.ID {
		return out, fmt.Errorf("media %s does not belong to workspace %s", asset.ID, ws.ID)
	}

	sctx := &strategy.Context{
		Workspace: *ws,
		Media:     asset,
		Filter:    paramsFilter(in.Params),
		Search:    paramsSearch(in.Params),
	}
	if err := fillMediaSnapshot(dbc, deps, sctx, asset); err != nil {
		return out, err
	}

	out.Ctx = sctx
	out.Version = asset.LabelVersion
	return out, nil
}

// fillMediaSnapshot loads label clips, their entities, and the asset's media
// clips into the context. Shared between the media and timeline load steps.
// The full label set is always loaded; the label-type allow-list only gates
// candidate emission, so filtered-out labels still count toward occurrence
// and cluster statistics.
func fillMediaSnapshot(dbc dbctx.Context, deps LoadMediaContextDeps, sctx *strategy.Context, asset *types.MediaAsset) error {
	labelClips, err := deps.LabelClips.ListByMedia(dbc, asset.ID)
	if err != nil {
		return fmt.Errorf("load label clips: %w", err)
	}

	entityIDs := make([]uuid.UUID, 0, len(labelClips))
	seen := make(map[uuid.UUID]bool, len(labelClips))
	sctx.LabelClips = make([]types.LabelClip, 0, len(labelClips))
	for _, lc := range labelClips {
		if lc == nil {
			continue
		}
		sctx.LabelClips = append(sctx.LabelClips, *lc)
		if lc.LabelEntityRef != nil && *lc.LabelEntityRef != uuid.Nil && !seen[*lc.LabelEntityRef] {
			seen[*lc.LabelEntityRef] = true
			entityIDs = append(entityIDs, *lc.LabelEntityRef)
		}
	}

	sctx.Entities = make(map[uuid.UUID]types.LabelEntity, len(entityIDs))
	if len(entityIDs) > 0 {
		entities, err := deps.Entities.GetByIDs(dbc, entityIDs)
		if err != nil {
			return fmt.Errorf("load label entities: %w", err)
		}
		for _, e := range entities {
			if e != nil {
				sctx.Entities[e.ID] = *e
			}
		}
	}

	mediaClips, err := deps.MediaClips.ListByMedia(dbc, asset.ID)
	if err != nil {
		return fmt.Errorf("load media clips: %w", err)
	}
	sctx.MediaClips = make([]types.MediaClip, 0, len(mediaClips))
	for _, mc := range mediaClips {
		if mc != nil {
			sctx.MediaClips = append(sctx.MediaClips, *mc)
		}
	}
	return nil
}

func paramsFilter(p GenerateParams) strategy.FilterParams {
	if p.Filter != nil {
		return *p.Filter
	}
	return strategy.FilterParams{}
}

func paramsSearch(p GenerateParams) strategy.SearchParams {
	if p.Search != nil {
		return *p.Search
	}
	return strategy.SearchParams{}
}
