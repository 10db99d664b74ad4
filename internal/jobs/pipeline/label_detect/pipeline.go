package label_detect

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/clients/gcp"
	jobrt "github.com/clipsmith/clipsmith-backend/internal/jobs/runtime"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
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
	if p.video == nil {
		jc.Fail("validate", fmt.Errorf("video intelligence client not configured"))
		return nil
	}

	dbc := dbctx.Context{Ctx: jc.Ctx}
	asset, err := p.media.GetByID(dbc, mediaID)
	if err != nil {
		jc.Fail("load", err)
		return nil
	}
	if asset == nil {
		jc.Fail("load", fmt.Errorf("media asset %s not found", mediaID))
		return nil
	}
	if asset.WorkspaceRef != workspaceID {
		jc.Fail("load", fmt.Errorf("media %s does not belong to workspace %s", mediaID, workspaceID))
		return nil
	}
	if !strings.HasPrefix(asset.SourceURI, "gs://") {
		jc.Fail("load", fmt.Errorf("media %s has no gs:// source uri", mediaID))
		return nil
	}

	cfg := gcp.VideoConfig{}
	if lang, ok := jc.Payload()["language_code"].(string); ok {
		cfg.LanguageCode = lang
	}

	jc.Progress("annotate", 10, "Running video annotation")
	results, err := p.video.AnnotateVideoGCS(jc.Ctx, asset.SourceURI, cfg)
	if err != nil {
		jc.Fail("annotate", err)
		return nil
	}

	jc.Progress("import", 70, "Importing detection labels")
	stats, err := p.importer.Import(dbc, workspaceID, mediaID, results)
	if err != nil {
		jc.Fail("import", err)
		return nil
	}

	jc.Succeed("done", map[string]any{
		"workspace_id":  workspaceID.String(),
		"media_id":      mediaID.String(),
		"label_clips":   stats.Clips,
		"entities":      stats.Entities,
		"label_version": stats.LabelVersion,
	})
	return nil
}
