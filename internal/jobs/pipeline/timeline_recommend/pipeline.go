package timeline_recommend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/jobs/recommend/steps"
	jobrt "github.com/clipsmith/clipsmith-backend/internal/jobs/runtime"
	"github.com/clipsmith/clipsmith-backend/internal/recs/combine"
	"github.com/clipsmith/clipsmith-backend/internal/recs/overlap"
	"github.com/clipsmith/clipsmith-backend/internal/recs/queryhash"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
	"github.com/clipsmith/clipsmith-backend/internal/recs/writer"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	workspaceID, ok := jc.PayloadUUID("workspace_id")
	if !ok || workspaceID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing workspace_id"))
		return nil
	}
	timelineID, ok := jc.PayloadUUID("timeline_id")
	if !ok || timelineID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing timeline_id"))
		return nil
	}
	var seedClipID *uuid.UUID
	if id, ok := jc.PayloadUUID("seed_clip_id"); ok && id != uuid.Nil {
		seedClipID = &id
	}
	targetMode := ""
	if v, ok := jc.Payload()["target_mode"]; ok && v != nil {
		targetMode = strings.TrimSpace(fmt.Sprint(v))
	}
	params, err := steps.DecodeParams(jc.Job.Payload)
	if err != nil {
		jc.Fail("validate", err)
		return nil
	}
	params.Strategies = steps.KnownStrategies(p.log, params.Strategies)

	jc.Progress("load", 10, "Loading scoring context")
	loaded, err := steps.LoadTimelineContext(jc.Ctx, steps.LoadTimelineContextDeps{
		LoadMediaContextDeps: steps.LoadMediaContextDeps{
			DB:         p.db,
			Log:        p.log,
			Workspaces: p.workspaces,
			Media:      p.media,
			MediaClips: p.mediaClips,
			LabelClips: p.labelClips,
			Entities:   p.entities,
		},
		Timelines:     p.timelines,
		TimelineClips: p.timelineClips,
	}, steps.LoadTimelineContextInput{
		WorkspaceID: workspaceID,
		TimelineID:  timelineID,
		SeedClipID:  seedClipID,
		TargetMode:  targetMode,
		Params:      params,
	})
	if err != nil {
		jc.Fail("load", err)
		return nil
	}

	jc.Progress("score", 40, "Scoring candidate clips")
	byStrategy, err := steps.ScoreTimeline(jc.Ctx, loaded.Ctx, params.Strategies)
	if err != nil {
		jc.Fail("score", err)
		return nil
	}
	candidates := combine.Timeline(byStrategy, params.Weights)

	// In append mode a recommended clip must fit the free space; replace mode
	// proposes against an empty timeline.
	occupied := overlap.Occupied(loaded.Ctx.TimelineClips)
	candidates, stats := overlap.Filter(candidates, occupied, loaded.Ctx.TargetMode,
		func(c strategy.TimelineCandidate) (overlap.Range, bool) {
			mc := loaded.Ctx.ClipByID(c.ClipID)
			if mc == nil {
				return overlap.Range{}, false
			}
			return overlap.Range{Start: mc.Start, End: mc.End}, true
		})
	if stats.Filtered > 0 {
		p.log.Debug("Overlap filter removed candidates",
			"timeline_id", timelineID,
			"filtered", stats.Filtered,
			"remaining", stats.Remaining,
		)
	}

	hash := queryhash.Build(queryhash.Input{
		WorkspaceID: workspaceID,
		TimelineID:  &timelineID,
		Version:     loaded.Version,
		Strategies:  params.Strategies,
		Filter:      params.Filter,
		Search:      params.Search,
	})

	jc.Progress("write", 80, "Writing recommendations")
	res, err := p.writer.Write(jc.Ctx, writer.TimelineScope{
		WorkspaceRef: workspaceID,
		TimelineRef:  timelineID,
		QueryHash:    hash,
		Version:      loaded.Version,
		TargetMode:   loaded.Ctx.TargetMode,
		SeedClipRef:  seedClipID,
		MaxResults:   params.MaxResults,
	}, candidates)
	if err != nil {
		jc.Fail("write", err)
		return nil
	}

	if jc.Notify != nil {
		jc.Notify.RecommendationsUpdated(jc.Job.OwnerUserID, hash, res.Created+res.Updated, res.Pruned)
	}
	jc.Succeed("done", map[string]any{
		"workspace_id": workspaceID.String(),
		"timeline_id":  timelineID.String(),
		"query_hash":   hash,
		"generated":    res.Created + res.Updated,
		"pruned":       res.Pruned,
		"skipped":      res.Skipped,
	})
	return nil
}
