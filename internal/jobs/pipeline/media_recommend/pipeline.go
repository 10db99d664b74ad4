package media_recommend

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/jobs/recommend/steps"
	jobrt "github.com/clipsmith/clipsmith-backend/internal/jobs/runtime"
	"github.com/clipsmith/clipsmith-backend/internal/recs/combine"
	"github.com/clipsmith/clipsmith-backend/internal/recs/queryhash"
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
	mediaID, ok := jc.PayloadUUID("media_id")
	if !ok || mediaID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing media_id"))
		return nil
	}
	params, err := steps.DecodeParams(jc.Job.Payload)
	if err != nil {
		jc.Fail("validate", err)
		return nil
	}
	params.Strategies = steps.KnownStrategies(p.log, params.Strategies)

	jc.Progress("load", 10, "Loading scoring context")
	loaded, err := steps.LoadMediaContext(jc.Ctx, steps.LoadMediaContextDeps{
		DB:         p.db,
		Log:        p.log,
		Workspaces: p.workspaces,
		Media:      p.media,
		MediaClips: p.mediaClips,
		LabelClips: p.labelClips,
		Entities:   p.entities,
	}, steps.LoadMediaContextInput{
		WorkspaceID: workspaceID,
		MediaID:     mediaID,
		Params:      params,
	})
	if err != nil {
		jc.Fail("load", err)
		return nil
	}

	jc.Progress("score", 40, "Scoring candidate segments")
	byStrategy, err := steps.ScoreMedia(jc.Ctx, loaded.Ctx, params.Strategies)
	if err != nil {
		jc.Fail("score", err)
		return nil
	}
	candidates := combine.Media(byStrategy, params.Weights)

	hash := queryhash.Build(queryhash.Input{
		WorkspaceID: workspaceID,
		MediaID:     &mediaID,
		Version:     loaded.Version,
		Strategies:  params.Strategies,
		Filter:      params.Filter,
		Search:      params.Search,
	})

	jc.Progress("write", 80, "Writing recommendations")
	res, err := p.writer.Write(jc.Ctx, writer.MediaScope{
		WorkspaceRef: workspaceID,
		MediaRef:     mediaID,
		QueryHash:    hash,
		Version:      loaded.Version,
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
		"media_id":     mediaID.String(),
		"query_hash":   hash,
		"generated":    res.Created + res.Updated,
		"pruned":       res.Pruned,
		"skipped":      res.Skipped,
	})
	return nil
}
