package steps

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

type LoadTimelineContextDeps struct {
	LoadMediaContextDeps
	Timelines     mediarepos.TimelineRepo
	TimelineClips mediarepos.TimelineClipRepo
}

type LoadTimelineContextInput struct {
	WorkspaceID uuid.UUID
	TimelineID  uuid.UUID
	SeedClipID  *uuid.UUID
	TargetMode  string
	Params      GenerateParams
}

type LoadTimelineContextOutput struct {
	Ctx     *strategy.Context
	Version int
}

// LoadTimelineContext assembles the snapshot for a timeline-level run. The
// timeline resolves to its single source asset, whose labels and clips form
// the candidate pool; current timeline placements come along for overlap
// filtering and placed-clip exclusion.
func LoadTimelineContext(ctx context.Context, deps LoadTimelineContextDeps, in LoadTimelineContextInput) (LoadTimelineContextOutput, error) {
	out := LoadTimelineContextOutput{}
	if deps.Timelines == nil || deps.TimelineClips == nil {
		return out, fmt.Errorf("load_timeline_context: missing deps")
	}
	if in.WorkspaceID == uuid.Nil {
		return out, fmt.Errorf("load_timeline_context: missing workspace_id")
	}
	if in.TimelineID == uuid.Nil {
		return out, fmt.Errorf("load_timeline_context: missing timeline_id")
	}
	mode := in.TargetMode
	if mode == "" {
		mode = types.TargetModeAppend
	}
	if mode != types.TargetModeAppend && mode != types.TargetModeReplace {
		return out, fmt.Errorf("invalid target_mode %q", in.TargetMode)
	}
	dbc := dbctx.Context{Ctx: ctx}

	ws, err := deps.Workspaces.GetByID(dbc, in.WorkspaceID)
	if err != nil {
		return out, fmt.Errorf("load workspace: %w", err)
	}
	if ws == nil {
		return out, fmt.Errorf("workspace %s not found", in.WorkspaceID)
	}
	tl, err := deps.Timelines.GetByID(dbc, in.TimelineID)
	if err != nil {
		return out, fmt.Errorf("load timeline: %w", err)
	}
	if tl == nil {
		return out, fmt.Errorf("timeline %s not found", in.TimelineID)
	}
	if tl.WorkspaceRef != ws.ID {
		return out, fmt.Errorf("timeline %s does not belong to workspace %s", tl.ID, ws.ID)
	}
	asset, err := deps.Media.GetByID(dbc, tl.MediaRef)
	if err != nil {
		return out, fmt.Errorf("load media asset: %w", err)
	}
	if asset == nil {
		return out, fmt.Errorf("media asset %s not found", tl.MediaRef)
	}

	sctx := &strategy.Context{
		Workspace:  *ws,
		Media:      asset,
		Timeline:   tl,
		TargetMode: mode,
		Filter:     paramsFilter(in.Params),
		Search:     paramsSearch(in.Params),
	}
	if err := fillMediaSnapshot(dbc, deps.LoadMediaContextDeps, sctx, asset); err != nil {
		return out, err
	}

	tlClips, err := deps.TimelineClips.ListByTimeline(dbc, tl.ID)
	if err != nil {
		return out, fmt.Errorf("load timeline clips: %w", err)
	}
	sctx.TimelineClips = make([]types.TimelineClip, 0, len(tlClips))
	for _, tc := range tlClips {
		if tc != nil {
			sctx.TimelineClips = append(sctx.TimelineClips, *tc)
		}
	}

	if in.SeedClipID != nil && *in.SeedClipID != uuid.Nil {
		seed := sctx.ClipByID(*in.SeedClipID)
		if seed == nil {
			return out, fmt.Errorf("seed clip %s not found on media %s", in.SeedClipID, asset.ID)
		}
		sctx.SeedClip = seed
	}

	out.Ctx = sctx
	out.Version = asset.LabelVersion
	return out, nil
}
